package domain

// OptionIndex identifies one of the four answer positions of a question.
type OptionIndex string

const (
	First  OptionIndex = "First"
	Second OptionIndex = "Second"
	Third  OptionIndex = "Third"
	Fourth OptionIndex = "Fourth"
)

// Valid reports whether the index is one of the four known positions.
func (o OptionIndex) Valid() bool {
	switch o {
	case First, Second, Third, Fourth:
		return true
	}
	return false
}

// AnswerStatus is the graded outcome of one question for one user. It is
// computed by the server, never supplied by clients.
type AnswerStatus string

const (
	Correct   AnswerStatus = "Correct"
	Incorrect AnswerStatus = "Incorrect"
	NoAnswer  AnswerStatus = "NoAnswer"
)

// Question models an MCQ question with exactly one correct option. ID is the
// key answers and statuses are stored under; question text is display-only, so
// two questions with the same text cannot collide in the store.
type Question struct {
	ID      string      `json:"id"`
	Text    string      `json:"text"`
	Options [4]string   `json:"options"`
	Correct OptionIndex `json:"correct"`
}

// Game is the ordered question sequence of one round. It is immutable once
// fetched for a round.
type Game struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// User is a registered account. PasswordHash is never sent to clients.
type User struct {
	Username     string
	PasswordHash string
}

// Grade computes the status for one question: no recorded answer is an
// explicit NoAnswer outcome, not an error.
func Grade(answer OptionIndex, answered bool, correct OptionIndex) AnswerStatus {
	switch {
	case !answered:
		return NoAnswer
	case answer == correct:
		return Correct
	default:
		return Incorrect
	}
}
