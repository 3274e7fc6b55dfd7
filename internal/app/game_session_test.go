package app_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"gameshow-service/internal/app"
	"gameshow-service/internal/domain"
	"gameshow-service/internal/infra/memory"
	"gameshow-service/internal/protocol"
)

func TestFirstMessageIsTimeTillGame(t *testing.T) {
	h := newHarness(t, sampleGame())
	defer h.close()

	msg := h.nextMessage(t)
	ttg, ok := msg.(protocol.TimeTillGame)
	if !ok {
		t.Fatalf("expected TimeTillGame first, got %T", msg)
	}
	if ttg.Time != 42 {
		t.Fatalf("expected 42 seconds, got %d", ttg.Time)
	}
}

func TestCorrectAnswerWinsTheRound(t *testing.T) {
	h := newHarness(t, sampleGame())
	defer h.close()

	h.nextMessage(t) // TimeTillGame
	h.notifier.Publish()

	if _, ok := h.nextMessage(t).(protocol.GameStart); !ok {
		t.Fatalf("expected GameStart")
	}
	question, ok := h.nextMessage(t).(protocol.Question)
	if !ok {
		t.Fatalf("expected Question")
	}
	if question.Question != "What is 2+2?" {
		t.Fatalf("unexpected question %q", question.Question)
	}

	h.sendAnswer(domain.Third)

	answer, ok := h.nextMessage(t).(protocol.Answer)
	if !ok {
		t.Fatalf("expected Answer reveal")
	}
	if answer.Status != domain.Correct || answer.AnswerIdx != domain.Third {
		t.Fatalf("expected Correct/Third, got %s/%s", answer.Status, answer.AnswerIdx)
	}

	end, ok := h.nextMessage(t).(protocol.GameEnd)
	if !ok {
		t.Fatalf("expected GameEnd")
	}
	if end.Score != 1 {
		t.Fatalf("expected score 1, got %d", end.Score)
	}
	if score, ok := h.store.Score("alice"); !ok || score != 1 {
		t.Fatalf("expected persisted score 1, got %d (ok=%v)", score, ok)
	}
}

func TestSilentClientScoresZero(t *testing.T) {
	game := domain.Game{ID: "g", Questions: []domain.Question{
		{ID: "q1", Text: "one", Options: [4]string{"a", "b", "c", "d"}, Correct: domain.First},
		{ID: "q2", Text: "two", Options: [4]string{"a", "b", "c", "d"}, Correct: domain.Second},
	}}
	h := newHarness(t, game)
	defer h.close()

	h.nextMessage(t) // TimeTillGame
	h.notifier.Publish()
	h.nextMessage(t) // GameStart

	for i := 0; i < 2; i++ {
		if _, ok := h.nextMessage(t).(protocol.Question); !ok {
			t.Fatalf("expected question %d", i+1)
		}
		answer, ok := h.nextMessage(t).(protocol.Answer)
		if !ok {
			t.Fatalf("expected reveal %d", i+1)
		}
		if answer.Status != domain.NoAnswer {
			t.Fatalf("expected NoAnswer, got %s", answer.Status)
		}
	}

	end, ok := h.nextMessage(t).(protocol.GameEnd)
	if !ok || end.Score != 0 {
		t.Fatalf("expected GameEnd score 0, got %+v", end)
	}
}

func TestAnswerOutsideWindowYieldsNoGame(t *testing.T) {
	h := newHarness(t, sampleGame())
	defer h.close()

	h.nextMessage(t) // TimeTillGame
	h.sendAnswer(domain.First)

	if _, ok := h.nextMessage(t).(protocol.NoGame); !ok {
		t.Fatalf("expected NoGame notice")
	}
	if _, ok, _ := h.store.GetAnswer(context.Background(), "alice", "q1"); ok {
		t.Fatalf("expected nothing recorded in the store")
	}
}

func TestMalformedClientMessageEndsSession(t *testing.T) {
	h := newHarness(t, sampleGame())

	h.nextMessage(t) // TimeTillGame
	h.conn.in <- []byte("not json")

	select {
	case err := <-h.done:
		if err == nil {
			t.Fatalf("expected a parse error")
		}
		if !strings.Contains(err.Error(), "malformed client message") {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not terminate on corrupted stream")
	}
}

func TestGameFetchFailureAbortsRoundOnly(t *testing.T) {
	h := newHarnessWith(t, failingGames{}, memory.NewPlayStore())
	defer h.close()

	h.nextMessage(t) // TimeTillGame
	h.notifier.Publish()

	select {
	case msg := <-h.conn.out:
		t.Fatalf("expected no round messages, got %T", msg)
	case err := <-h.done:
		t.Fatalf("session terminated: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	// The session is still in its awaiting state: answers get NoGame.
	h.sendAnswer(domain.First)
	if _, ok := h.nextMessage(t).(protocol.NoGame); !ok {
		t.Fatalf("expected NoGame after aborted round")
	}
}

func TestStoreFailuresDoNotAbortTheRound(t *testing.T) {
	h := newHarnessWith(t, staticGames{game: sampleGame()}, memory.NewFailingPlayStore())
	defer h.close()

	h.nextMessage(t) // TimeTillGame
	h.notifier.Publish()
	h.nextMessage(t) // GameStart
	h.nextMessage(t) // Question

	answer, ok := h.nextMessage(t).(protocol.Answer)
	if !ok || answer.Status != domain.NoAnswer {
		t.Fatalf("expected NoAnswer when the store is down, got %+v", answer)
	}
	end, ok := h.nextMessage(t).(protocol.GameEnd)
	if !ok || end.Score != 0 {
		t.Fatalf("expected GameEnd score 0, got %+v", end)
	}
}

func TestSessionPlaysConsecutiveRounds(t *testing.T) {
	h := newHarness(t, sampleGame())
	defer h.close()

	h.nextMessage(t) // TimeTillGame
	for round := 0; round < 2; round++ {
		h.notifier.Publish()
		h.nextMessage(t) // GameStart
		h.nextMessage(t) // Question
		h.nextMessage(t) // Answer
		if _, ok := h.nextMessage(t).(protocol.GameEnd); !ok {
			t.Fatalf("expected GameEnd in round %d", round+1)
		}
	}
}

// harness wires a session to in-memory collaborators and a fake transport.
type harness struct {
	conn     *fakeConn
	store    *memory.PlayStore
	notifier *app.StartNotifier
	done     chan error
	cancel   context.CancelFunc
}

func newHarness(t *testing.T, game domain.Game) *harness {
	return newHarnessWith(t, staticGames{game: game}, memory.NewPlayStore())
}

func newHarnessWith(t *testing.T, games app.GameRepository, store *memory.PlayStore) *harness {
	t.Helper()
	conn := &fakeConn{
		in:  make(chan []byte, 8),
		out: make(chan protocol.ServerMessage, 64),
	}
	notifier := app.NewStartNotifier()
	session := app.NewGameSession(app.SessionConfig{
		ID:       "test-session",
		Username: "alice",
		Conn:     conn,
		Games:    games,
		Store:    store,
		Schedule: staticSchedule{d: 42 * time.Second},
		Notifier: notifier,
		Timings: app.PhaseTimings{
			IntroDelay:   10 * time.Millisecond,
			AnswerWindow: 150 * time.Millisecond,
			RevealDelay:  10 * time.Millisecond,
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{conn: conn, store: store, notifier: notifier, done: make(chan error, 1), cancel: cancel}
	go func() { h.done <- session.Run(ctx) }()
	return h
}

func (h *harness) close() {
	h.cancel()
	close(h.conn.in)
	<-h.done
}

func (h *harness) nextMessage(t *testing.T) protocol.ServerMessage {
	t.Helper()
	select {
	case msg := <-h.conn.out:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a server message")
		return nil
	}
}

func (h *harness) sendAnswer(idx domain.OptionIndex) {
	data, _ := json.Marshal(protocol.ClientMessage{Type: protocol.TypeAnswer, AnswerIdx: idx})
	h.conn.in <- data
}

type fakeConn struct {
	in  chan []byte
	out chan protocol.ServerMessage
}

func (c *fakeConn) Read() ([]byte, error) {
	data, ok := <-c.in
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (c *fakeConn) Write(msg protocol.ServerMessage) error {
	c.out <- msg
	return nil
}

type staticSchedule struct {
	d time.Duration
}

func (s staticSchedule) TimeTillNextGame() (time.Duration, error) { return s.d, nil }

type staticGames struct {
	game domain.Game
}

func (g staticGames) GetGame(context.Context) (domain.Game, error) { return g.game, nil }

type failingGames struct{}

func (failingGames) GetGame(context.Context) (domain.Game, error) {
	return domain.Game{}, domain.ErrGameNotFound
}

func sampleGame() domain.Game {
	return domain.Game{
		ID: "game-1",
		Questions: []domain.Question{
			{
				ID:      "q1",
				Text:    "What is 2+2?",
				Options: [4]string{"1", "2", "3", "4"},
				Correct: domain.Third,
			},
		},
	}
}
