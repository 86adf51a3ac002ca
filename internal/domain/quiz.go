package domain

import (
	"errors"
	"math"
	"time"
)

// Quiz constants.
const (
	// MinQuizCards is the minimum card count a wordbook needs before a quiz
	// can start on it.
	MinQuizCards = 4

	// QuizChoiceCount is the target number of choices per question. A very
	// small global card corpus can yield fewer; callers must tolerate that.
	QuizChoiceCount = 4

	// DefaultQuestionDuration is the per-question time limit in seconds,
	// applied when the caller does not configure one.
	DefaultQuestionDuration = 25
)

// Quiz session errors.
var (
	// ErrQuizCompleted is returned when an operation needs remaining
	// questions but the sequence is exhausted.
	ErrQuizCompleted = errors.New("quiz already completed")
	// ErrNoOpenQuestion is returned by SubmitAnswer when no question is
	// open — including the second leg of a double submit.
	ErrNoOpenQuestion = errors.New("no open question")
)

// AnswerFeedback is the single-slot result of the last submitted answer.
// It is consumed (read-once) by the next question fetch.
type AnswerFeedback struct {
	Correct        bool    `json:"correct"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	// CorrectAnswer is the back text shown to the user. It prefers the text
	// that was rendered as a choice, so mid-quiz card edits cannot change
	// the answer after it was shown.
	CorrectAnswer string `json:"correct_answer"`
	// CorrectWord is the front text of the correct card.
	CorrectWord string `json:"correct_word"`
}

// QuizResult is the final outcome of a completed (or abandoned) session.
type QuizResult struct {
	WordBookID string  `json:"wordbook_id"`
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// QuizSession walks a fixed sequence of cards: open a question, submit an
// answer, repeat until the index reaches the sequence length.
//
// The session itself is not goroutine-safe; the owning registry serializes
// access per session.
type QuizSession struct {
	ID         string
	WordBookID string

	// CardIDs is the full ordered sequence, fixed at start. Selection order
	// is the cards' insertion order; only choice presentation is shuffled.
	CardIDs []string

	// Index is the zero-based position of the next question.
	Index int
	// Score is the cumulative correct-answer count.
	Score int

	// Duration is the configured per-question time limit in seconds.
	Duration int

	// questionStartedAt is nonzero while a question is open. Submitting
	// clears it, which is what makes a duplicate submit a no-op.
	questionStartedAt time.Time

	// feedback is the single-slot last-answer feedback, consumed on read.
	feedback *AnswerFeedback
}

// NewQuizSession creates a session over the given card sequence.
// A non-positive duration falls back to DefaultQuestionDuration.
func NewQuizSession(id, wordBookID string, cardIDs []string, duration int) *QuizSession {
	if duration <= 0 {
		duration = DefaultQuestionDuration
	}
	return &QuizSession{
		ID:         id,
		WordBookID: wordBookID,
		CardIDs:    cardIDs,
		Duration:   duration,
	}
}

// Completed reports whether every question has been answered.
func (s *QuizSession) Completed() bool {
	return s.Index >= len(s.CardIDs)
}

// Total returns the number of questions in the session.
func (s *QuizSession) Total() int {
	return len(s.CardIDs)
}

// QuestionNumber returns the 1-based number of the current question.
func (s *QuizSession) QuestionNumber() int {
	return s.Index + 1
}

// OpenQuestion marks the current question as open and returns the id of
// its correct card. The timestamp anchors elapsed-time measurement for the
// subsequent answer. Re-opening before answering simply restarts the clock.
func (s *QuizSession) OpenQuestion(now time.Time) (string, error) {
	if s.Completed() {
		return "", ErrQuizCompleted
	}
	s.questionStartedAt = now
	return s.CardIDs[s.Index], nil
}

// SubmitAnswer scores the open question and advances the session.
// correct is the id comparison result computed by the caller; answerText
// and word populate the feedback slot. Returns ErrNoOpenQuestion when no
// question is open, which also covers the duplicate-submit hazard: the
// first submit closes the question, so the second finds nothing to score.
func (s *QuizSession) SubmitAnswer(now time.Time, correct bool, answerText, word string) (*AnswerFeedback, error) {
	if s.Completed() {
		return nil, ErrQuizCompleted
	}
	if s.questionStartedAt.IsZero() {
		return nil, ErrNoOpenQuestion
	}

	elapsed := round1(now.Sub(s.questionStartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	if correct {
		s.Score++
	}

	fb := &AnswerFeedback{
		Correct:        correct,
		ElapsedSeconds: elapsed,
		CorrectAnswer:  answerText,
		CorrectWord:    word,
	}
	s.feedback = fb
	s.questionStartedAt = time.Time{}
	s.Index++

	return fb, nil
}

// TakeFeedback returns and clears the pending last-answer feedback.
// A second read before the next answer returns nil.
func (s *QuizSession) TakeFeedback() *AnswerFeedback {
	fb := s.feedback
	s.feedback = nil
	return fb
}

// Result computes the final score summary. Percentage is score/total*100
// rounded to one decimal; a zero total is defined as 0, not an error.
// Teardown of the session is the registry's job — Result itself is pure.
func (s *QuizSession) Result() QuizResult {
	total := len(s.CardIDs)
	var pct float64
	if total > 0 {
		pct = round1(float64(s.Score) / float64(total) * 100)
	}
	return QuizResult{
		WordBookID: s.WordBookID,
		Score:      s.Score,
		Total:      total,
		Percentage: pct,
	}
}

// round1 rounds to one decimal place.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
