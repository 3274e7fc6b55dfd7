// Package protocol defines the websocket wire messages exchanged with game
// clients. Every message is a flat JSON object discriminated by a "type" field.
package protocol

import (
	"encoding/json"
	"fmt"

	"gameshow-service/internal/domain"
)

const (
	TypeTimeTillGame = "TimeTillGame"
	TypeGameStart    = "GameStart"
	TypeQuestion     = "Question"
	TypeAnswer       = "Answer"
	TypeNoGame       = "NoGame"
	TypeGameEnd      = "GameEnd"
)

// ServerMessage is implemented by every message the server can emit.
type ServerMessage interface {
	serverMessage()
}

// TimeTillGame reports the seconds until the next scheduled round. It is
// always the first message sent to a newly authorized connection.
type TimeTillGame struct {
	Type string `json:"type"`
	Time uint64 `json:"time"`
}

func NewTimeTillGame(seconds uint64) TimeTillGame {
	return TimeTillGame{Type: TypeTimeTillGame, Time: seconds}
}

// GameStart announces that a round is beginning.
type GameStart struct {
	Type string `json:"type"`
}

func NewGameStart() GameStart {
	return GameStart{Type: TypeGameStart}
}

// Question presents one question and its four options. The correct option is
// deliberately absent.
type Question struct {
	Type     string    `json:"type"`
	Question string    `json:"question"`
	Options  [4]string `json:"options"`
}

func NewQuestion(text string, options [4]string) Question {
	return Question{Type: TypeQuestion, Question: text, Options: options}
}

// Answer reveals the correct option together with the user's graded status.
type Answer struct {
	Type      string              `json:"type"`
	Status    domain.AnswerStatus `json:"status"`
	AnswerIdx domain.OptionIndex  `json:"answer_idx"`
}

func NewAnswer(status domain.AnswerStatus, correct domain.OptionIndex) Answer {
	return Answer{Type: TypeAnswer, Status: status, AnswerIdx: correct}
}

// NoGame tells a client its answer arrived while no question was active.
type NoGame struct {
	Type string `json:"type"`
}

func NewNoGame() NoGame {
	return NoGame{Type: TypeNoGame}
}

// GameEnd closes a round with the user's final score.
type GameEnd struct {
	Type  string `json:"type"`
	Score uint32 `json:"score"`
}

func NewGameEnd(score uint32) GameEnd {
	return GameEnd{Type: TypeGameEnd, Score: score}
}

func (TimeTillGame) serverMessage() {}
func (GameStart) serverMessage()    {}
func (Question) serverMessage()     {}
func (Answer) serverMessage()       {}
func (NoGame) serverMessage()       {}
func (GameEnd) serverMessage()      {}

// ClientMessage is the single message clients may send: an answer for the
// currently active question.
type ClientMessage struct {
	Type      string             `json:"type"`
	AnswerIdx domain.OptionIndex `json:"answer_idx"`
}

// ParseClientMessage decodes and validates one inbound frame. Any failure here
// is treated as a corrupted stream by the caller and ends the connection.
func ParseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, err
	}
	if msg.Type != TypeAnswer {
		return ClientMessage{}, fmt.Errorf("unsupported message type %q", msg.Type)
	}
	if !msg.AnswerIdx.Valid() {
		return ClientMessage{}, fmt.Errorf("invalid answer index %q", msg.AnswerIdx)
	}
	return msg, nil
}
