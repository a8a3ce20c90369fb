// Package pass stores secrets in the standard unix password manager.
package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/ports"
)

var ErrUnavailable = errors.New("pass command unavailable")

const (
	notInStoreMarker = "is not in the password store"
	storeDirEnv      = "PASSWORD_STORE_DIR"
)

// invocation is one pass subcommand run.
type invocation struct {
	args  []string
	stdin string
	env   []string
}

type runFunc func(ctx context.Context, call invocation) (stdout string, stderr string, err error)

type Store struct {
	dir string
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

type Option func(*Store)

// WithStoreDir keeps inbox sessions in a password store of their own instead
// of the user's default one.
func WithStoreDir(dir string) Option {
	return func(s *Store) {
		s.dir = dir
	}
}

func NewStore(opts ...Option) *Store {
	store := &Store{run: execPass}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("pass insert %q: secret must be a single line", key)
	}
	_, err := s.call(ctx, key, value+"\n", "insert", "--multiline", "--force")
	return err
}

// Get returns the first line of the entry; pass entries may carry metadata below it.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stdout, err := s.call(ctx, key, "", "show")
	if err != nil {
		return "", err
	}

	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSuffix(first, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.call(ctx, key, "", "rm", "--force")
	if errors.Is(err, domain.ErrSecretNotFound) {
		return nil
	}
	return err
}

func (s *Store) call(ctx context.Context, key string, stdin string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	call := invocation{args: append(args, key), stdin: stdin}
	if s.dir != "" {
		call.env = []string{storeDirEnv + "=" + s.dir}
	}

	stdout, stderr, err := s.run(ctx, call)
	if err == nil {
		return stdout, nil
	}

	op := args[0]
	switch {
	case strings.Contains(stderr, notInStoreMarker):
		return "", fmt.Errorf("pass %s %q: %w", op, key, domain.ErrSecretNotFound)
	case stderr == "":
		return "", fmt.Errorf("pass %s %q: %w", op, key, err)
	default:
		return "", fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
	}
}

func execPass(ctx context.Context, call invocation) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, call.args...)
	if call.stdin != "" {
		cmd.Stdin = strings.NewReader(call.stdin)
	}
	if len(call.env) > 0 {
		cmd.Env = append(os.Environ(), call.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}
