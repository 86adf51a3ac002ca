package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	apperrors "github.com/wordbookapp/wordbook-server/internal/errors"
	"github.com/wordbookapp/wordbook-server/internal/store"
)

// defaultSessionTTL evicts sessions nobody touched for this long.
const defaultSessionTTL = time.Hour

// QuizOptions configures the quiz service.
type QuizOptions struct {
	// QuestionDuration is the per-question time limit. Zero falls back to
	// the domain default.
	QuestionDuration time.Duration
	// SessionTTL is the idle lifetime of a session before eviction.
	SessionTTL time.Duration
}

// QuizService runs quiz sessions over an in-memory registry. Sessions are
// keyed by opaque tokens; each entry carries its own lock so concurrent
// requests on one session serialize without blocking other sessions.
type QuizService struct {
	store  *store.Store
	logger *slog.Logger

	questionDuration time.Duration
	sessionTTL       time.Duration
	now              func() time.Time

	mu       sync.Mutex
	sessions map[string]*quizEntry

	stopOnce sync.Once
	stop     chan struct{}
}

type quizEntry struct {
	mu      sync.Mutex
	session *domain.QuizSession

	// openCardID is the card of the currently open question, empty when
	// no question is open. It is what makes answer scoring server-side.
	openCardID  string
	correctText string
	correctWord string

	lastSeen time.Time
}

// NewQuizService creates a quiz service and starts its eviction loop.
// Call Stop on shutdown.
func NewQuizService(store *store.Store, logger *slog.Logger, opts QuizOptions) *QuizService {
	if opts.QuestionDuration <= 0 {
		opts.QuestionDuration = domain.DefaultQuestionDuration * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	s := &QuizService{
		store:            store,
		logger:           logger,
		questionDuration: opts.QuestionDuration,
		sessionTTL:       opts.SessionTTL,
		now:              time.Now,
		sessions:         make(map[string]*quizEntry),
		stop:             make(chan struct{}),
	}
	go s.evictLoop()
	return s
}

// Stop terminates the eviction loop.
func (s *QuizService) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// QuizStart is the response to starting a session.
type QuizStart struct {
	Token           string `json:"token"`
	WordBookID      string `json:"wordbook_id"`
	Total           int    `json:"total"`
	DurationSeconds int    `json:"duration_seconds"`
}

// QuizChoice is one selectable answer.
type QuizChoice struct {
	CardID string `json:"card_id"`
	Text   string `json:"text"`
}

// QuizQuestion is the rendered current question, with the consumed
// feedback of the previous answer when one is pending.
type QuizQuestion struct {
	Number          int                    `json:"number"`
	Total           int                    `json:"total"`
	Word            string                 `json:"word"`
	Choices         []QuizChoice           `json:"choices"`
	DurationSeconds int                    `json:"duration_seconds"`
	Feedback        *domain.AnswerFeedback `json:"feedback,omitempty"`
}

// Start opens a quiz session on a viewable wordbook. The book needs at
// least the minimum card count; the question order is the cards'
// insertion order.
func (s *QuizService) Start(ctx context.Context, viewer domain.Viewer, wordBookID string) (*QuizStart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wb, err := viewableWordBook(ctx, s.store, viewer, wordBookID)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListCardsByWordBook(ctx, wb.ID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	if len(cards) < domain.MinQuizCards {
		return nil, apperrors.BadRequestf("wordbook needs at least %d cards for a quiz", domain.MinQuizCards)
	}

	cardIDs := make([]string, len(cards))
	for i, card := range cards {
		cardIDs[i] = card.ID
	}

	token := uuid.NewString()
	session := domain.NewQuizSession(token, wb.ID, cardIDs, int(s.questionDuration.Seconds()))

	s.mu.Lock()
	s.sessions[token] = &quizEntry{session: session, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("quiz started",
		"session_id", token,
		"wordbook_id", wb.ID,
		"questions", len(cardIDs),
	)

	return &QuizStart{
		Token:           token,
		WordBookID:      wb.ID,
		Total:           session.Total(),
		DurationSeconds: session.Duration,
	}, nil
}

// Question renders the current question: the correct card's front text
// plus shuffled choices drawn from the same wordbook first, then the
// rest of the corpus. Pending feedback from the previous answer is
// consumed and attached.
func (s *QuizService) Question(ctx context.Context, token string) (*QuizQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, err := s.entry(token)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastSeen = s.now()

	if entry.session.Completed() {
		return nil, apperrors.Conflict("quiz already completed")
	}

	feedback := entry.session.TakeFeedback()
	cardID, err := entry.session.OpenQuestion(s.now())
	if err != nil {
		return nil, err
	}

	correct, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, notFound(err, "quiz card no longer exists")
	}

	choices, err := s.buildChoices(ctx, entry.session.WordBookID, correct)
	if err != nil {
		return nil, err
	}

	entry.openCardID = correct.ID
	entry.correctText = correct.BackText
	entry.correctWord = correct.FrontText

	return &QuizQuestion{
		Number:          entry.session.QuestionNumber(),
		Total:           entry.session.Total(),
		Word:            correct.FrontText,
		Choices:         choices,
		DurationSeconds: entry.session.Duration,
		Feedback:        feedback,
	}, nil
}

// Answer scores the open question against the selected card id and
// advances the session. A second submit for the same question is
// rejected without changing anything.
func (s *QuizService) Answer(ctx context.Context, token, selectedCardID string) (*domain.AnswerFeedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, err := s.entry(token)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastSeen = s.now()

	correct := selectedCardID != "" && selectedCardID == entry.openCardID
	fb, err := entry.session.SubmitAnswer(s.now(), correct, entry.correctText, entry.correctWord)
	if errors.Is(err, domain.ErrQuizCompleted) {
		return nil, apperrors.Conflict("quiz already completed")
	}
	if errors.Is(err, domain.ErrNoOpenQuestion) {
		return nil, apperrors.Conflict("no open question")
	}
	if err != nil {
		return nil, err
	}

	entry.openCardID = ""
	entry.correctText = ""
	entry.correctWord = ""
	return fb, nil
}

// Result returns the final score and tears the session down. The token
// is single-use: a second call is NotFound. Abandoned sessions score
// their answered questions only.
func (s *QuizService) Result(ctx context.Context, token string) (*domain.QuizResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	entry, ok := s.sessions[token]
	if ok {
		delete(s.sessions, token)
	}
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.NotFound("quiz session not found")
	}

	entry.mu.Lock()
	result := entry.session.Result()
	entry.mu.Unlock()

	s.logger.Info("quiz finished",
		"session_id", token,
		"wordbook_id", result.WordBookID,
		"score", result.Score,
		"total", result.Total,
	)
	return &result, nil
}

// buildChoices assembles the answer set: the correct card plus
// distractors sampled uniformly without replacement from the same
// wordbook, topped up from other wordbooks when the book is too small.
// A tiny corpus can yield fewer choices than the target.
func (s *QuizService) buildChoices(ctx context.Context, wordBookID string, correct *domain.WordCard) ([]QuizChoice, error) {
	want := domain.QuizChoiceCount - 1

	siblings, err := s.store.ListCardsByWordBook(ctx, wordBookID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	pool := make([]*domain.WordCard, 0, len(siblings))
	for _, card := range siblings {
		if card.ID != correct.ID {
			pool = append(pool, card)
		}
	}

	distractors := sampleCards(pool, want)
	if len(distractors) < want {
		external, err := s.store.ListCardsExcludingWordBook(ctx, wordBookID)
		if err != nil {
			return nil, fmt.Errorf("list external cards: %w", err)
		}
		distractors = append(distractors, sampleCards(external, want-len(distractors))...)
	}

	choices := make([]QuizChoice, 0, len(distractors)+1)
	choices = append(choices, QuizChoice{CardID: correct.ID, Text: correct.BackText})
	for _, card := range distractors {
		choices = append(choices, QuizChoice{CardID: card.ID, Text: card.BackText})
	}
	rand.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	return choices, nil
}

// sampleCards picks up to n cards uniformly without replacement.
func sampleCards(pool []*domain.WordCard, n int) []*domain.WordCard {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	if len(pool) <= n {
		picked := make([]*domain.WordCard, len(pool))
		copy(picked, pool)
		return picked
	}
	picked := make([]*domain.WordCard, 0, n)
	for _, i := range rand.Perm(len(pool))[:n] {
		picked = append(picked, pool[i])
	}
	return picked
}

func (s *QuizService) entry(token string) (*quizEntry, error) {
	s.mu.Lock()
	entry, ok := s.sessions[token]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.NotFound("quiz session not found")
	}
	return entry, nil
}

func (s *QuizService) evictLoop() {
	ticker := time.NewTicker(s.sessionTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			cutoff := s.now().Add(-s.sessionTTL)
			s.mu.Lock()
			for token, entry := range s.sessions {
				if entry.lastSeen.Before(cutoff) {
					delete(s.sessions, token)
					s.logger.Debug("quiz session evicted", "session_id", token)
				}
			}
			s.mu.Unlock()
		}
	}
}
