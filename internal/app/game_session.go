package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"gameshow-service/internal/domain"
	"gameshow-service/internal/protocol"
)

// GameRepository loads the currently active game's content.
type GameRepository interface {
	GetGame(ctx context.Context) (domain.Game, error)
}

// PlayStore records answers, graded statuses, and scores. Implementations
// must be safe under concurrent access from many sessions; per-key
// last-write-wins is sufficient.
type PlayStore interface {
	SetAnswer(ctx context.Context, username, questionID string, answer domain.OptionIndex) error
	GetAnswer(ctx context.Context, username, questionID string) (domain.OptionIndex, bool, error)
	SetAnswerStatus(ctx context.Context, username, questionID string, status domain.AnswerStatus) error
	AnswerStatuses(ctx context.Context, username string) ([]domain.AnswerStatus, error)
	SetScore(ctx context.Context, username string, score int) error
}

// Schedule answers how long until the next game starts.
type Schedule interface {
	TimeTillNextGame() (time.Duration, error)
}

// ClientConn is the transport a session talks to: one connected client.
type ClientConn interface {
	// Read blocks for the next raw client frame.
	Read() ([]byte, error)
	// Write sends one server message.
	Write(msg protocol.ServerMessage) error
}

// IDGenerator allocates connection ids for new sessions.
type IDGenerator interface {
	NewID() string
}

// PhaseTimings are the fixed delays of one round's timed phases.
type PhaseTimings struct {
	IntroDelay   time.Duration
	AnswerWindow time.Duration
	RevealDelay  time.Duration
}

func DefaultPhaseTimings() PhaseTimings {
	return PhaseTimings{
		IntroDelay:   10 * time.Second,
		AnswerWindow: 10 * time.Second,
		RevealDelay:  10 * time.Second,
	}
}

// SessionConfig carries everything a session needs; Timings and Clock may be
// left zero to get the defaults.
type SessionConfig struct {
	ID       string
	Username string
	Conn     ClientConn
	Games    GameRepository
	Store    PlayStore
	Schedule Schedule
	Notifier *StartNotifier
	Timings  PhaseTimings
	Clock    clockwork.Clock
}

// GameSession drives one authorized connection for its whole lifetime: it
// reports the time until the next game, waits for the start broadcast, and
// walks the timed question/answer/reveal phases while concurrently collecting
// the client's answers.
type GameSession struct {
	id       string
	username string
	conn     ClientConn
	games    GameRepository
	store    PlayStore
	schedule Schedule
	notifier *StartNotifier
	timings  PhaseTimings
	clock    clockwork.Clock

	out *outbox

	// activeQuestion is shared between the inbound flow (reader) and the
	// phase loop (writer). Empty outside an answer window.
	mu             sync.Mutex
	activeQuestion string
}

func NewGameSession(cfg SessionConfig) *GameSession {
	if cfg.Timings == (PhaseTimings{}) {
		cfg.Timings = DefaultPhaseTimings()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &GameSession{
		id:       cfg.ID,
		username: cfg.Username,
		conn:     cfg.Conn,
		games:    cfg.Games,
		store:    cfg.Store,
		schedule: cfg.Schedule,
		notifier: cfg.Notifier,
		timings:  cfg.Timings,
		clock:    cfg.Clock,
		out:      newOutbox(),
	}
}

// Run serves the connection until the transport closes or fails. The inbound
// flow, outbound flow, and phase loop are raced; whichever finishes first ends
// the session, and the phase loop alone can never finish under normal
// operation.
func (s *GameSession) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.reportTimeTillGame()

	errc := make(chan error, 3)
	go func() { errc <- s.readLoop(ctx) }()
	go func() { errc <- s.writeLoop() }()
	go func() { errc <- s.phaseLoop(ctx) }()

	err := <-errc
	cancel()
	s.out.Close()
	return err
}

// reportTimeTillGame queues the TimeTillGame message; it runs before the flows
// start, so it is always the first message a client receives. A schedule error
// is non-fatal and surfaces to the client as an absent value.
func (s *GameSession) reportTimeTillGame() {
	d, err := s.schedule.TimeTillNextGame()
	if err != nil {
		log.Warn().Err(err).Str("session", s.id).Msg("no upcoming game to announce")
		return
	}
	s.out.Push(protocol.NewTimeTillGame(uint64(d.Seconds())))
}

// readLoop is the inbound flow: one client message at a time. A frame that
// cannot be parsed ends the connection; the stream cannot safely be consumed
// past it.
func (s *GameSession) readLoop(ctx context.Context) error {
	for {
		data, err := s.conn.Read()
		if err != nil {
			return err
		}
		msg, err := protocol.ParseClientMessage(data)
		if err != nil {
			return fmt.Errorf("malformed client message: %w", err)
		}
		s.recordAnswer(ctx, msg.AnswerIdx)
	}
}

// recordAnswer stores the answer against the active question, or tells the
// client no question is active. Never silently records outside a window.
func (s *GameSession) recordAnswer(ctx context.Context, answer domain.OptionIndex) {
	s.mu.Lock()
	questionID := s.activeQuestion
	s.mu.Unlock()

	if questionID == "" {
		s.out.Push(protocol.NewNoGame())
		return
	}
	if err := s.store.SetAnswer(ctx, s.username, questionID, answer); err != nil {
		log.Error().Err(err).Str("session", s.id).Str("question", questionID).Msg("failed to record answer")
	}
}

// writeLoop is the outbound flow: it drains the outbox to the transport in
// strict arrival order.
func (s *GameSession) writeLoop() error {
	for {
		msg, ok := s.out.Next()
		if !ok {
			return nil
		}
		if err := s.conn.Write(msg); err != nil {
			return err
		}
	}
}

// phaseLoop waits for start broadcasts and plays rounds forever. The receiver
// is kept across rounds, so the most recent signal published mid-round is
// still delivered and starts the next round immediately after settling.
func (s *GameSession) phaseLoop(ctx context.Context) error {
	signal := s.notifier.Subscribe()
	defer signal.Cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-signal.Wait():
		}
		s.playRound(ctx)
	}
}

// playRound walks one complete round. Storage failures are logged and the
// round continues; only a game fetch failure aborts the round, and nothing
// here ever terminates the connection.
func (s *GameSession) playRound(ctx context.Context) {
	game, err := s.games.GetGame(ctx)
	if err != nil {
		log.Error().Err(err).Str("session", s.id).Msg("could not load game, skipping round")
		return
	}

	s.out.Push(protocol.NewGameStart())
	s.clock.Sleep(s.timings.IntroDelay)

	graded := 0
	for _, q := range game.Questions {
		s.setActiveQuestion(q.ID)
		s.out.Push(protocol.NewQuestion(q.Text, q.Options))
		s.clock.Sleep(s.timings.AnswerWindow)
		s.clearActiveQuestion()

		answer, answered, err := s.store.GetAnswer(ctx, s.username, q.ID)
		if err != nil {
			log.Error().Err(err).Str("session", s.id).Str("question", q.ID).Msg("failed to read recorded answer")
			answered = false
		}
		status := domain.Grade(answer, answered, q.Correct)
		if status == domain.Correct {
			graded++
		}
		if err := s.store.SetAnswerStatus(ctx, s.username, q.ID, status); err != nil {
			log.Error().Err(err).Str("session", s.id).Str("question", q.ID).Msg("failed to persist answer status")
		}

		s.out.Push(protocol.NewAnswer(status, q.Correct))
		s.clock.Sleep(s.timings.RevealDelay)
	}

	score := graded
	if statuses, err := s.store.AnswerStatuses(ctx, s.username); err != nil {
		log.Error().Err(err).Str("session", s.id).Msg("failed to read statuses for scoring, using round tally")
	} else {
		score = 0
		for _, status := range statuses {
			if status == domain.Correct {
				score++
			}
		}
	}
	if err := s.store.SetScore(ctx, s.username, score); err != nil {
		log.Error().Err(err).Str("session", s.id).Msg("failed to persist score")
	}
	s.out.Push(protocol.NewGameEnd(uint32(score)))
}

func (s *GameSession) setActiveQuestion(questionID string) {
	s.mu.Lock()
	s.activeQuestion = questionID
	s.mu.Unlock()
}

func (s *GameSession) clearActiveQuestion() {
	s.mu.Lock()
	s.activeQuestion = ""
	s.mu.Unlock()
}
