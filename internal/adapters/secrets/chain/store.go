package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/community-inbox/internal/adapters/secrets/file"
	passstore "github.com/bnema/community-inbox/internal/adapters/secrets/pass"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
	"github.com/rs/zerolog"
)

// Backend is one named secret store in the chain.
type Backend struct {
	Name  string
	Store ports.SecretStore
}

// Store tries its backends in order. Writes land in the first backend that
// accepts them; reads walk the chain until one holds the key; deletes reach
// every backend so a rotated token never lingers in a fallback.
type Store struct {
	backends []Backend
	logger   zerolog.Logger
}

var _ ports.SecretStore = (*Store)(nil)

var errNoBackends = errors.New("secret chain has no backends")

func New(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("secret backend %d (%s) is nil", i, backend.Name)
		}
	}

	return &Store{
		backends: append([]Backend(nil), backends...),
		logger:   logging.Component("secrets"),
	}, nil
}

// NewDefault prefers the pass password manager and falls back to files under fileRoot.
// A non-empty passDir selects the password store pass writes to.
func NewDefault(passDir string, fileRoot string) (*Store, error) {
	return New(
		Backend{Name: "pass", Store: newPassStore(passDir)},
		Backend{Name: "file", Store: filestore.NewStore(fileRoot)},
	)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			if len(errs) > 0 {
				s.logger.Debug().Str("backend", backend.Name).Msg("secret stored in fallback backend")
			}
			return nil
		}
		if isCancellation(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend put failed: %w", backend.Name, err))
	}

	return errors.Join(errs...)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	missing := 0
	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if isCancellation(err) {
			return "", err
		}
		if errors.Is(err, domain.ErrSecretNotFound) {
			missing++
		}
		errs = append(errs, fmt.Errorf("%s backend get failed: %w", backend.Name, err))
	}

	if missing == len(s.backends) {
		return "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}
	return "", errors.Join(errs...)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	for _, backend := range s.backends {
		err := backend.Store.Delete(ctx, key)
		if err == nil {
			continue
		}
		if isCancellation(err) {
			return err
		}
		s.logger.Debug().Err(err).Str("backend", backend.Name).Msg("secret delete failed")
		errs = append(errs, fmt.Errorf("%s backend delete failed: %w", backend.Name, err))
	}

	if len(errs) == len(s.backends) {
		return errors.Join(errs...)
	}
	return nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func newPassStore(dir string) *passstore.Store {
	if dir == "" {
		return passstore.NewStore()
	}
	return passstore.NewStore(passstore.WithStoreDir(dir))
}
