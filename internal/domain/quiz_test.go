package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(cards int) *QuizSession {
	ids := make([]string, cards)
	for i := range ids {
		ids[i] = "card-" + string(rune('a'+i))
	}
	return NewQuizSession("quiz-1", "wb-1", ids, 0)
}

func TestNewQuizSession_DefaultDuration(t *testing.T) {
	s := newTestSession(4)
	assert.Equal(t, DefaultQuestionDuration, s.Duration)

	s = NewQuizSession("quiz-2", "wb-1", []string{"a", "b", "c", "d"}, 40)
	assert.Equal(t, 40, s.Duration)
}

func TestQuizSession_FullCycle(t *testing.T) {
	s := newTestSession(4)
	now := time.Now()

	for i := 0; i < 4; i++ {
		assert.False(t, s.Completed())
		assert.Equal(t, i+1, s.QuestionNumber())

		correctID, err := s.OpenQuestion(now)
		require.NoError(t, err)
		assert.Equal(t, s.CardIDs[i], correctID)

		// Answer the first three correctly, miss the last.
		correct := i < 3
		fb, err := s.SubmitAnswer(now.Add(2*time.Second), correct, "back text", "front text")
		require.NoError(t, err)
		assert.Equal(t, correct, fb.Correct)
		assert.InDelta(t, 2.0, fb.ElapsedSeconds, 0.01)

		now = now.Add(3 * time.Second)
	}

	assert.True(t, s.Completed())

	res := s.Result()
	assert.Equal(t, 3, res.Score)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 75.0, res.Percentage)
	assert.Equal(t, "wb-1", res.WordBookID)
}

func TestQuizSession_ElapsedRoundedToOneDecimal(t *testing.T) {
	s := newTestSession(4)
	start := time.Now()

	_, err := s.OpenQuestion(start)
	require.NoError(t, err)

	fb, err := s.SubmitAnswer(start.Add(1234*time.Millisecond), true, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1.2, fb.ElapsedSeconds)
}

func TestQuizSession_DoubleSubmitIsNoOp(t *testing.T) {
	s := newTestSession(4)
	now := time.Now()

	_, err := s.OpenQuestion(now)
	require.NoError(t, err)

	_, err = s.SubmitAnswer(now.Add(time.Second), true, "", "")
	require.NoError(t, err)

	// Second submit against the already-advanced index must not score.
	_, err = s.SubmitAnswer(now.Add(2*time.Second), true, "", "")
	assert.ErrorIs(t, err, ErrNoOpenQuestion)
	assert.Equal(t, 1, s.Score)
	assert.Equal(t, 1, s.Index)
}

func TestQuizSession_SubmitWithoutOpenQuestion(t *testing.T) {
	s := newTestSession(4)

	_, err := s.SubmitAnswer(time.Now(), true, "", "")
	assert.ErrorIs(t, err, ErrNoOpenQuestion)
	assert.Equal(t, 0, s.Score)
}

func TestQuizSession_OpenQuestionAfterCompletion(t *testing.T) {
	s := newTestSession(4)
	now := time.Now()

	for i := 0; i < 4; i++ {
		_, err := s.OpenQuestion(now)
		require.NoError(t, err)
		_, err = s.SubmitAnswer(now, false, "", "")
		require.NoError(t, err)
	}

	_, err := s.OpenQuestion(now)
	assert.ErrorIs(t, err, ErrQuizCompleted)
}

func TestQuizSession_FeedbackIsReadOnce(t *testing.T) {
	s := newTestSession(4)
	now := time.Now()

	assert.Nil(t, s.TakeFeedback(), "fresh session has no feedback")

	_, err := s.OpenQuestion(now)
	require.NoError(t, err)
	_, err = s.SubmitAnswer(now.Add(time.Second), true, "meaning", "word")
	require.NoError(t, err)

	fb := s.TakeFeedback()
	require.NotNil(t, fb)
	assert.True(t, fb.Correct)
	assert.Equal(t, "meaning", fb.CorrectAnswer)
	assert.Equal(t, "word", fb.CorrectWord)

	assert.Nil(t, s.TakeFeedback(), "second read before the next answer returns empty")
}

func TestQuizSession_FeedbackOverwritten(t *testing.T) {
	s := newTestSession(4)
	now := time.Now()

	_, err := s.OpenQuestion(now)
	require.NoError(t, err)
	_, err = s.SubmitAnswer(now, true, "first", "")
	require.NoError(t, err)

	// Not consumed; next answer overwrites the slot.
	_, err = s.OpenQuestion(now)
	require.NoError(t, err)
	_, err = s.SubmitAnswer(now, false, "second", "")
	require.NoError(t, err)

	fb := s.TakeFeedback()
	require.NotNil(t, fb)
	assert.Equal(t, "second", fb.CorrectAnswer)
	assert.False(t, fb.Correct)
}

func TestQuizResult_ZeroTotal(t *testing.T) {
	s := NewQuizSession("quiz-1", "wb-1", nil, 0)

	res := s.Result()
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0.0, res.Percentage)
}

func TestQuizResult_PercentageRounding(t *testing.T) {
	tests := []struct {
		score, total int
		want         float64
	}{
		{3, 4, 75.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{4, 4, 100.0},
		{0, 4, 0.0},
	}

	for _, tt := range tests {
		s := newTestSession(tt.total)
		s.Score = tt.score
		assert.Equal(t, tt.want, s.Result().Percentage, "score %d/%d", tt.score, tt.total)
	}
}
