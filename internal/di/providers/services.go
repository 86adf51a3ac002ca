package providers

import (
	"github.com/samber/do/v2"

	"github.com/wordbookapp/wordbook-server/internal/backup"
	"github.com/wordbookapp/wordbook-server/internal/config"
	"github.com/wordbookapp/wordbook-server/internal/logger"
	"github.com/wordbookapp/wordbook-server/internal/service"
	"github.com/wordbookapp/wordbook-server/internal/validation"
)

// ProvideWordBookService provides the wordbook and card service.
func ProvideWordBookService(i do.Injector) (*service.WordBookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storages := do.MustInvoke[*ImageStorages](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWordBookService(storeHandle.Store, indexHandle.Index, storages.CardImages, validator, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// ProvideSocialService provides the like, bookmark, and star service.
func ProvideSocialService(i do.Injector) (*service.SocialService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSocialService(storeHandle.Store, log.Logger), nil
}

// QuizServiceHandle wraps the quiz service so its eviction loop stops on
// shutdown.
type QuizServiceHandle struct {
	*service.QuizService
}

// Shutdown implements do.Shutdownable.
func (h *QuizServiceHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideQuizService provides the quiz session service.
func ProvideQuizService(i do.Injector) (*QuizServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewQuizService(storeHandle.Store, log.Logger, service.QuizOptions{
		QuestionDuration: cfg.Quiz.QuestionDuration,
		SessionTTL:       cfg.Quiz.SessionTTL,
	})

	return &QuizServiceHandle{QuizService: svc}, nil
}

// ProvideProfileService provides the user profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storages := do.MustInvoke[*ImageStorages](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, storages.Avatars, log.Logger), nil
}

// ProvideBackupService provides the data export service.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewService(storeHandle.Store, cfg.Storage.BackupPath, serverVersion, log.Logger), nil
}

// ProvideAdminService provides the admin service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	backups := do.MustInvoke[*backup.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, backups, log.Logger), nil
}
