package memory

import (
	"context"
	"errors"
	"sync"

	"gameshow-service/internal/domain"
)

var errStoreFailing = errors.New("play store failing")

// PlayStore is an in-memory record of answers, statuses, and scores. Writes
// are last-write-wins per (user, question) key.
type PlayStore struct {
	mu       sync.RWMutex
	answers  map[string]map[string]domain.OptionIndex
	statuses map[string]map[string]domain.AnswerStatus
	scores   map[string]int
	fail     bool
}

func NewPlayStore() *PlayStore {
	return &PlayStore{
		answers:  make(map[string]map[string]domain.OptionIndex),
		statuses: make(map[string]map[string]domain.AnswerStatus),
		scores:   make(map[string]int),
	}
}

// NewFailingPlayStore returns a store whose every operation fails, for
// exercising the log-and-continue grading paths.
func NewFailingPlayStore() *PlayStore {
	s := NewPlayStore()
	s.fail = true
	return s
}

func (s *PlayStore) SetAnswer(_ context.Context, username, questionID string, answer domain.OptionIndex) error {
	if s.fail {
		return errStoreFailing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.answers[username] == nil {
		s.answers[username] = make(map[string]domain.OptionIndex)
	}
	s.answers[username][questionID] = answer
	return nil
}

func (s *PlayStore) GetAnswer(_ context.Context, username, questionID string) (domain.OptionIndex, bool, error) {
	if s.fail {
		return "", false, errStoreFailing
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[username][questionID]
	return answer, ok, nil
}

func (s *PlayStore) SetAnswerStatus(_ context.Context, username, questionID string, status domain.AnswerStatus) error {
	if s.fail {
		return errStoreFailing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses[username] == nil {
		s.statuses[username] = make(map[string]domain.AnswerStatus)
	}
	s.statuses[username][questionID] = status
	return nil
}

func (s *PlayStore) AnswerStatuses(_ context.Context, username string) ([]domain.AnswerStatus, error) {
	if s.fail {
		return nil, errStoreFailing
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	statuses := make([]domain.AnswerStatus, 0, len(s.statuses[username]))
	for _, status := range s.statuses[username] {
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *PlayStore) SetScore(_ context.Context, username string, score int) error {
	if s.fail {
		return errStoreFailing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[username] = score
	return nil
}

// Score is a test helper to read back a persisted score.
func (s *PlayStore) Score(username string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[username]
	return score, ok
}
