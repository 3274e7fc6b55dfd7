package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"gameshow-service/internal/domain"
)

// PlayStore keeps answers and statuses in one hash per user and the score in
// a plain key. Per-field writes are last-write-wins, which is all the grading
// protocol needs.
//
// Keys:
//
//	HSET game:answers:{user}  {questionID} {option}
//	HSET game:statuses:{user} {questionID} {status}
//	SET  game:score:{user}    {score}
type PlayStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlayStore(client *redis.Client, ttl time.Duration) *PlayStore {
	return &PlayStore{client: client, ttl: ttl}
}

func (s *PlayStore) SetAnswer(ctx context.Context, username, questionID string, answer domain.OptionIndex) error {
	key := s.answersKey(username)
	if err := s.client.HSet(ctx, key, questionID, string(answer)).Err(); err != nil {
		return fmt.Errorf("set answer: %w", err)
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, key, s.ttl).Err()
	}
	return nil
}

func (s *PlayStore) GetAnswer(ctx context.Context, username, questionID string) (domain.OptionIndex, bool, error) {
	raw, err := s.client.HGet(ctx, s.answersKey(username), questionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get answer: %w", err)
	}
	return domain.OptionIndex(raw), true, nil
}

func (s *PlayStore) SetAnswerStatus(ctx context.Context, username, questionID string, status domain.AnswerStatus) error {
	key := s.statusesKey(username)
	if err := s.client.HSet(ctx, key, questionID, string(status)).Err(); err != nil {
		return fmt.Errorf("set answer status: %w", err)
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, key, s.ttl).Err()
	}
	return nil
}

func (s *PlayStore) AnswerStatuses(ctx context.Context, username string) ([]domain.AnswerStatus, error) {
	raw, err := s.client.HVals(ctx, s.statusesKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("get answer statuses: %w", err)
	}
	statuses := make([]domain.AnswerStatus, 0, len(raw))
	for _, v := range raw {
		statuses = append(statuses, domain.AnswerStatus(v))
	}
	return statuses, nil
}

func (s *PlayStore) SetScore(ctx context.Context, username string, score int) error {
	if err := s.client.Set(ctx, s.scoreKey(username), strconv.Itoa(score), s.ttl).Err(); err != nil {
		return fmt.Errorf("set score: %w", err)
	}
	return nil
}

func (s *PlayStore) answersKey(username string) string {
	return "game:answers:" + username
}

func (s *PlayStore) statusesKey(username string) string {
	return "game:statuses:" + username
}

func (s *PlayStore) scoreKey(username string) string {
	return "game:score:" + username
}
