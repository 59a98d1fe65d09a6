// Copyright 2026 fanjia1024
// Secret management abstraction

package secrets

import (
	"context"
	"fmt"

	"engage-platform/pkg/errors"
)

// Store resolves named secrets for template expansion and admin use.
type Store interface {
	// Get returns the secret value; errors.ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a secret value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes a secret.
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a secret store provider.
type Config struct {
	Provider string            `yaml:"provider"` // vault | env | memory
	Config   map[string]string `yaml:"config"`   // provider-specific settings
}

// NewStore builds a Store from config. Unknown providers are an error so a
// misconfigured deployment fails at startup rather than at first execution.
func NewStore(config Config) (Store, error) {
	switch config.Provider {
	case "", "memory":
		return NewMemoryStore(), nil
	case "env":
		return NewEnvStore(), nil
	case "vault":
		return NewVaultStore(VaultConfig{
			Address:    config.Config["address"],
			Token:      config.Config["token"],
			PathPrefix: config.Config["path_prefix"],
		})
	default:
		return nil, fmt.Errorf("unsupported secret provider: %s", config.Provider)
	}
}

func notFound(key string) error {
	return errors.Wrapf(errors.ErrNotFound, "secret %q", key)
}
