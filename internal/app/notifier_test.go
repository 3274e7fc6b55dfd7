package app

import (
	"testing"
	"time"
)

func TestPublishWithoutSubscribers(t *testing.T) {
	n := NewStartNotifier()
	done := make(chan struct{})
	go func() {
		n.Publish()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish with zero subscribers blocked")
	}
}

func TestPublishWakesAllCurrentSubscribers(t *testing.T) {
	n := NewStartNotifier()
	first := n.Subscribe()
	second := n.Subscribe()
	defer first.Cancel()
	defer second.Cancel()

	n.Publish()

	for _, s := range []*StartSignal{first, second} {
		select {
		case <-s.Wait():
		case <-time.After(time.Second):
			t.Fatalf("subscriber did not receive signal")
		}
	}
}

func TestLateSubscriberMissesEarlierPublish(t *testing.T) {
	n := NewStartNotifier()
	n.Publish()

	late := n.Subscribe()
	defer late.Cancel()
	select {
	case <-late.Wait():
		t.Fatalf("late subscriber observed an earlier publish")
	default:
	}

	n.Publish()
	select {
	case <-late.Wait():
	case <-time.After(time.Second):
		t.Fatalf("late subscriber missed the subsequent publish")
	}
}

func TestOnlyMostRecentSignalIsPending(t *testing.T) {
	n := NewStartNotifier()
	s := n.Subscribe()
	defer s.Cancel()

	n.Publish()
	n.Publish()
	n.Publish()

	<-s.Wait()
	select {
	case <-s.Wait():
		t.Fatalf("expected a single pending signal")
	default:
	}
}

func TestCancelledSubscriberIsNotDelivered(t *testing.T) {
	n := NewStartNotifier()
	s := n.Subscribe()
	s.Cancel()

	n.Publish()
	select {
	case <-s.Wait():
		t.Fatalf("cancelled subscriber received a signal")
	default:
	}
}
