package api

import (
	"github.com/wordbookapp/wordbook-server/internal/service"
)

// Services groups the business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	WordBook *service.WordBookService
	Tag      *service.TagService
	Social   *service.SocialService
	Quiz     *service.QuizService
	Profile  *service.ProfileService
	Admin    *service.AdminService
}
