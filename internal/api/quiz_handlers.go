package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/wordbookapp/wordbook-server/internal/domain"
	"github.com/wordbookapp/wordbook-server/internal/service"
)

func (s *Server) registerQuizRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "startQuiz",
		Method:      http.MethodPost,
		Path:        "/api/v1/wordbooks/{id}/quiz",
		Summary:     "Start quiz",
		Description: "Opens a quiz session over a wordbook's cards",
		Tags:        []string{"Quiz"},
	}, s.handleStartQuiz)

	huma.Register(s.api, huma.Operation{
		OperationID: "quizQuestion",
		Method:      http.MethodGet,
		Path:        "/api/v1/quiz/{token}/question",
		Summary:     "Current question",
		Description: "Returns the current question with shuffled choices, restarting its timer",
		Tags:        []string{"Quiz"},
	}, s.handleQuizQuestion)

	huma.Register(s.api, huma.Operation{
		OperationID: "quizAnswer",
		Method:      http.MethodPost,
		Path:        "/api/v1/quiz/{token}/answer",
		Summary:     "Submit answer",
		Description: "Scores the open question and advances the session",
		Tags:        []string{"Quiz"},
	}, s.handleQuizAnswer)

	huma.Register(s.api, huma.Operation{
		OperationID: "quizResult",
		Method:      http.MethodGet,
		Path:        "/api/v1/quiz/{token}/result",
		Summary:     "Quiz result",
		Description: "Returns the final score and closes the session",
		Tags:        []string{"Quiz"},
	}, s.handleQuizResult)
}

// === DTOs ===

// StartQuizInput contains parameters for opening a quiz session.
type StartQuizInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Wordbook ID"`
}

// QuizStartResponse describes a freshly opened quiz session.
type QuizStartResponse struct {
	Token           string `json:"token" doc:"Session token for subsequent calls"`
	WordBookID      string `json:"wordbook_id" doc:"Wordbook being quizzed"`
	Total           int    `json:"total" doc:"Number of questions"`
	DurationSeconds int    `json:"duration_seconds" doc:"Per-question time limit"`
}

// QuizStartOutput wraps the session description for Huma.
type QuizStartOutput struct {
	Body QuizStartResponse
}

// QuizTokenInput identifies a quiz session.
type QuizTokenInput struct {
	Token string `path:"token" doc:"Quiz session token"`
}

// QuizChoiceResponse is one selectable answer.
type QuizChoiceResponse struct {
	CardID string `json:"card_id" doc:"Card backing this choice"`
	Text   string `json:"text" doc:"Answer text"`
}

// AnswerFeedbackResponse reports how the previous question was scored.
type AnswerFeedbackResponse struct {
	Correct        bool    `json:"correct" doc:"Whether the answer was right"`
	ElapsedSeconds float64 `json:"elapsed_seconds" doc:"Time taken to answer"`
	CorrectAnswer  string  `json:"correct_answer" doc:"Back text of the correct card"`
	CorrectWord    string  `json:"correct_word" doc:"Front text of the correct card"`
}

// QuizQuestionResponse is the rendered current question.
type QuizQuestionResponse struct {
	Number          int                     `json:"number" doc:"1-based question number"`
	Total           int                     `json:"total" doc:"Number of questions"`
	Word            string                  `json:"word" doc:"Front text to quiz on"`
	Choices         []QuizChoiceResponse    `json:"choices" doc:"Shuffled answer choices"`
	DurationSeconds int                     `json:"duration_seconds" doc:"Time limit for this question"`
	Feedback        *AnswerFeedbackResponse `json:"feedback,omitempty" doc:"Feedback for the previous answer, delivered once"`
}

// QuizQuestionOutput wraps the question for Huma.
type QuizQuestionOutput struct {
	Body QuizQuestionResponse
}

// QuizAnswerRequest is the answer submission body. An empty card ID
// records a timeout.
type QuizAnswerRequest struct {
	CardID string `json:"card_id" doc:"Selected choice's card ID, empty for a timeout"`
}

// QuizAnswerInput wraps the answer submission for Huma.
type QuizAnswerInput struct {
	Token string `path:"token" doc:"Quiz session token"`
	Body  QuizAnswerRequest
}

// QuizAnswerOutput wraps the immediate feedback for Huma.
type QuizAnswerOutput struct {
	Body AnswerFeedbackResponse
}

// QuizResultResponse is the final score of a session.
type QuizResultResponse struct {
	WordBookID string  `json:"wordbook_id" doc:"Wordbook that was quizzed"`
	Score      int     `json:"score" doc:"Correct answers"`
	Total      int     `json:"total" doc:"Number of questions"`
	Percentage float64 `json:"percentage" doc:"Score as a percentage, one decimal"`
}

// QuizResultOutput wraps the result for Huma.
type QuizResultOutput struct {
	Body QuizResultResponse
}

// === Handlers ===

func (s *Server) handleStartQuiz(ctx context.Context, input *StartQuizInput) (*QuizStartOutput, error) {
	viewer, err := s.viewerFromHeader(input.Authorization)
	if err != nil {
		return nil, err
	}

	start, err := s.services.Quiz.Start(ctx, viewer, input.ID)
	if err != nil {
		return nil, err
	}

	return &QuizStartOutput{Body: QuizStartResponse{
		Token:           start.Token,
		WordBookID:      start.WordBookID,
		Total:           start.Total,
		DurationSeconds: start.DurationSeconds,
	}}, nil
}

func (s *Server) handleQuizQuestion(ctx context.Context, input *QuizTokenInput) (*QuizQuestionOutput, error) {
	question, err := s.services.Quiz.Question(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	resp := QuizQuestionResponse{
		Number:          question.Number,
		Total:           question.Total,
		Word:            question.Word,
		Choices:         quizChoices(question.Choices),
		DurationSeconds: question.DurationSeconds,
	}
	if question.Feedback != nil {
		feedback := answerFeedbackResponse(question.Feedback)
		resp.Feedback = &feedback
	}

	return &QuizQuestionOutput{Body: resp}, nil
}

func (s *Server) handleQuizAnswer(ctx context.Context, input *QuizAnswerInput) (*QuizAnswerOutput, error) {
	feedback, err := s.services.Quiz.Answer(ctx, input.Token, input.Body.CardID)
	if err != nil {
		return nil, err
	}

	return &QuizAnswerOutput{Body: answerFeedbackResponse(feedback)}, nil
}

func (s *Server) handleQuizResult(ctx context.Context, input *QuizTokenInput) (*QuizResultOutput, error) {
	result, err := s.services.Quiz.Result(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	return &QuizResultOutput{Body: QuizResultResponse{
		WordBookID: result.WordBookID,
		Score:      result.Score,
		Total:      result.Total,
		Percentage: result.Percentage,
	}}, nil
}

func quizChoices(choices []service.QuizChoice) []QuizChoiceResponse {
	out := make([]QuizChoiceResponse, len(choices))
	for i, choice := range choices {
		out[i] = QuizChoiceResponse{CardID: choice.CardID, Text: choice.Text}
	}
	return out
}

func answerFeedbackResponse(feedback *domain.AnswerFeedback) AnswerFeedbackResponse {
	return AnswerFeedbackResponse{
		Correct:        feedback.Correct,
		ElapsedSeconds: feedback.ElapsedSeconds,
		CorrectAnswer:  feedback.CorrectAnswer,
		CorrectWord:    feedback.CorrectWord,
	}
}
