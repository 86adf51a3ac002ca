package providers

import (
	"github.com/samber/do/v2"

	"github.com/wordbookapp/wordbook-server/internal/config"
	"github.com/wordbookapp/wordbook-server/internal/identity"
	"github.com/wordbookapp/wordbook-server/internal/logger"
)

// IdentityKey is the PASETO symmetric key shared with the identity provider.
type IdentityKey []byte

// ProvideIdentityKey loads or generates the token key.
func ProvideIdentityKey(i do.Injector) (IdentityKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := identity.LoadOrGenerateKey(cfg.Identity.KeyPath)
	if err != nil {
		return nil, err
	}
	cfg.Identity.TokenKey = key

	log.Info("Identity key loaded", "path", cfg.Identity.KeyPath)
	return IdentityKey(key), nil
}

// ProvideVerifier provides the token verifier.
func ProvideVerifier(i do.Injector) (*identity.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[IdentityKey](i)

	return identity.NewVerifier(key, cfg.Admin.UserIDs)
}
