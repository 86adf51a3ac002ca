package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/wordbookapp/wordbook-server/internal/config"
	"github.com/wordbookapp/wordbook-server/internal/logger"
	"github.com/wordbookapp/wordbook-server/internal/media/images"
)

// ImageStorages groups the image storage services.
type ImageStorages struct {
	CardImages *images.Storage
	Avatars    *images.Storage
}

// ProvideImageStorages provides the image storage services.
func ProvideImageStorages(i do.Injector) (*ImageStorages, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cards, err := images.NewStorage(cfg.Storage.ImagePath, "cards")
	if err != nil {
		return nil, fmt.Errorf("card image storage: %w", err)
	}

	avatars, err := images.NewStorage(cfg.Storage.ImagePath, "avatars")
	if err != nil {
		return nil, fmt.Errorf("avatar storage: %w", err)
	}

	log.Info("Image storages initialized", "path", cfg.Storage.ImagePath)

	return &ImageStorages{
		CardImages: cards,
		Avatars:    avatars,
	}, nil
}
