package app

import "sync"

// StartNotifier is the process-wide game-start broadcast. One Publish wakes
// every receiver subscribed at the moment of the call; it has no memory, so a
// receiver subscribed after a publish only observes later ones.
//
// Constructed explicitly and handed to each session so tests can run isolated
// instances.
type StartNotifier struct {
	mu   sync.Mutex
	subs map[*StartSignal]struct{}
}

func NewStartNotifier() *StartNotifier {
	return &StartNotifier{subs: make(map[*StartSignal]struct{})}
}

// StartSignal is one subscriber's receiver, usable by exactly one consumer
// flow. Its buffer holds at most one pending signal.
type StartSignal struct {
	notifier *StartNotifier
	ch       chan struct{}
}

// Subscribe registers a new, independent receiver.
func (n *StartNotifier) Subscribe() *StartSignal {
	s := &StartSignal{notifier: n, ch: make(chan struct{}, 1)}
	n.mu.Lock()
	n.subs[s] = struct{}{}
	n.mu.Unlock()
	return s
}

// Publish delivers one signal to every current receiver. It never blocks on
// slow receivers: a receiver that already holds an undelivered signal keeps
// only that one. Publishing with zero subscribers is a no-op.
func (n *StartNotifier) Publish() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for s := range n.subs {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

// Wait returns the channel the next signal arrives on.
func (s *StartSignal) Wait() <-chan struct{} {
	return s.ch
}

// Cancel unsubscribes the receiver. Safe to call more than once.
func (s *StartSignal) Cancel() {
	s.notifier.mu.Lock()
	delete(s.notifier.subs, s)
	s.notifier.mu.Unlock()
}
