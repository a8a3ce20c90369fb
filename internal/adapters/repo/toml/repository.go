// Package toml persists community profiles in a versioned TOML file.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	ProfilesPathKey = "storage.profiles_path"

	profilesFileMode = 0o600
	profilesDirMode  = 0o700
	tempFilePattern  = ".profiles-*.toml.tmp"
)

type Repository struct {
	path string
	mu   *sync.RWMutex
}

// Repositories pointing at the same file share one lock.
var (
	lockRegistryMu sync.Mutex
	pathLocks      = map[string]*sync.RWMutex{}
)

var _ ports.ProfileRepository = (*Repository)(nil)

// NewRepository reads the profiles file location from cfg.
func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		return nil, errors.New("configuration is nil")
	}

	path := cfg.GetString(ProfilesPathKey)
	if path == "" {
		return nil, errors.New("profiles path is empty")
	}
	return NewRepositoryAt(path)
}

func NewRepositoryAt(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve profiles path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{path: absPath, mu: lockFor(absPath)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// Save inserts or replaces the profile with the same name.
func (r *Repository) Save(ctx context.Context, profile domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.read()
	if err != nil {
		return err
	}

	encoded := toSchema(profile)
	replaced := false
	for i := range file.Profiles {
		if file.Profiles[i].Name == encoded.Name {
			file.Profiles[i] = encoded
			replaced = true
			break
		}
	}
	if !replaced {
		file.Profiles = append(file.Profiles, encoded)
	}
	sort.SliceStable(file.Profiles, func(i, j int) bool {
		return file.Profiles[i].Name < file.Profiles[j].Name
	})

	if err := ctx.Err(); err != nil {
		return err
	}
	return r.write(file)
}

func (r *Repository) Get(ctx context.Context, name domain.ProfileName) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.read()
	if err != nil {
		return domain.Profile{}, err
	}

	for _, entry := range file.Profiles {
		if entry.Name == string(name) {
			return fromSchema(entry), nil
		}
	}
	return domain.Profile{}, fmt.Errorf("%s: %w", name, domain.ErrProfileNotFound)
}

func (r *Repository) List(ctx context.Context) ([]domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.read()
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(file.Profiles))
	for _, entry := range file.Profiles {
		profiles = append(profiles, fromSchema(entry))
	}
	return profiles, nil
}

func (r *Repository) read() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read profiles file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode profiles file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) write(file fileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, profilesDirMode); err != nil {
		return fmt.Errorf("create profiles directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode profiles file: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp profiles file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp profiles file: %w", err)
	}
	if err := tmp.Chmod(profilesFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp profiles file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp profiles file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace profiles file: %w", err)
	}
	committed = true

	return nil
}

func lockFor(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLocks[path]; ok {
		return mu
	}
	mu := &sync.RWMutex{}
	pathLocks[path] = mu
	return mu
}

func toSchema(profile domain.Profile) profileSchema {
	return profileSchema{
		Name:        string(profile.Name),
		BaseURL:     profile.BaseURL,
		UserID:      string(profile.UserID),
		DisplayName: profile.DisplayName,
		TokenRef:    profile.TokenRef,
	}
}

func fromSchema(entry profileSchema) domain.Profile {
	return domain.Profile{
		Name:        domain.ProfileName(entry.Name),
		BaseURL:     entry.BaseURL,
		UserID:      domain.PeerID(entry.UserID),
		DisplayName: entry.DisplayName,
		TokenRef:    entry.TokenRef,
	}
}
