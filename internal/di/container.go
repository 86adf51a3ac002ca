// Package di provides dependency injection configuration for the Wordbook
// server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/wordbookapp/wordbook-server/internal/backup"
	"github.com/wordbookapp/wordbook-server/internal/config"
	"github.com/wordbookapp/wordbook-server/internal/di/providers"
	"github.com/wordbookapp/wordbook-server/internal/identity"
	"github.com/wordbookapp/wordbook-server/internal/logger"
	"github.com/wordbookapp/wordbook-server/internal/service"
	"github.com/wordbookapp/wordbook-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Identity layer
	do.Provide(injector, providers.ProvideIdentityKey)
	do.Provide(injector, providers.ProvideVerifier)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideImageStorages)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Business services
	do.Provide(injector, providers.ProvideBackupService)
	do.Provide(injector, providers.ProvideWordBookService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideSocialService)
	do.Provide(injector, providers.ProvideQuizService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideAdminService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization in
// dependency order and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[providers.IdentityKey](injector)
	_ = do.MustInvoke[*identity.Verifier](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ImageStorages](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)

	_ = do.MustInvoke[*service.WordBookService](injector)
	_ = do.MustInvoke[*service.TagService](injector)
	_ = do.MustInvoke[*service.SocialService](injector)
	_ = do.MustInvoke[*providers.QuizServiceHandle](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*service.AdminService](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Rebuild the search index from the store when it comes up empty.
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
