package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	inboxrender "github.com/bnema/community-inbox/internal/adapters/render/inbox"
	tomlrepo "github.com/bnema/community-inbox/internal/adapters/repo/toml"
	"github.com/bnema/community-inbox/internal/adapters/rest"
	chainstore "github.com/bnema/community-inbox/internal/adapters/secrets/chain"
	filestore "github.com/bnema/community-inbox/internal/adapters/secrets/file"
	passstore "github.com/bnema/community-inbox/internal/adapters/secrets/pass"
	"github.com/bnema/community-inbox/internal/adapters/session"
	"github.com/bnema/community-inbox/internal/application"
	"github.com/bnema/community-inbox/internal/config"
	"github.com/bnema/community-inbox/internal/domain"
	"github.com/bnema/community-inbox/internal/logging"
	"github.com/bnema/community-inbox/internal/ports"
)

// envToken, when set, replaces the stored session of the active profile.
const envToken = "INBOX_TOKEN"

var errNoBaseURL = errors.New("no API base URL configured")

type app struct {
	loader     *config.Loader
	configFile string

	cfg      *config.Config
	profiles ports.ProfileRepository
	secrets  ports.SecretStore
	service  *application.ProfileService
	renderer func(application.Snapshot, inboxrender.RenderOptions) (string, error)
	clock    ports.Clock
	getenv   func(string) string
	logFile  io.Closer
}

func newApp() *app {
	return &app{
		loader:   config.NewLoader(),
		renderer: inboxrender.Render,
		clock:    ports.SystemClock{},
		getenv:   os.Getenv,
	}
}

// wire runs once flags are parsed so --config, --profile and --log-level apply.
func (a *app) wire() error {
	if a.configFile != "" {
		a.loader.SetConfigFile(a.configFile)
	}
	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logFile, err := logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		File:         cfg.Logging.File,
		EnableCaller: cfg.Logging.EnableCaller,
		Output:       os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("wire logging: %w", err)
	}
	a.logFile = logFile

	repo, err := tomlrepo.NewRepository(a.loader.Viper())
	if err != nil {
		return fmt.Errorf("wire profile repository: %w", err)
	}
	a.profiles = repo

	secrets, err := newSecretStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("wire secret store chain: %w", err)
	}
	a.secrets = secrets

	a.service = application.NewProfileService(a.profiles, a.secrets, a.clock)
	return nil
}

func (a *app) close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

func newSecretStore(cfg config.StorageConfig) (*chainstore.Store, error) {
	switch cfg.SecretsBackend {
	case config.SecretsBackendPass:
		return chainstore.New(chainstore.Backend{Name: "pass", Store: passstore.NewStore(passstore.WithStoreDir(cfg.PassDir))})
	case config.SecretsBackendFile:
		return chainstore.New(chainstore.Backend{Name: "file", Store: filestore.NewStore(cfg.SecretsDir)})
	default:
		return chainstore.NewDefault(cfg.PassDir, cfg.SecretsDir)
	}
}

func (a *app) profileName() domain.ProfileName {
	return domain.ProfileName(a.cfg.Profile)
}

// activeProfile loads the selected profile. With INBOX_TOKEN set a missing
// profile is tolerated as long as api.base_url is configured.
func (a *app) activeProfile(ctx context.Context) (domain.Profile, error) {
	name := a.profileName()

	profile, err := a.service.Get(ctx, name)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrProfileNotFound) && a.getenv(envToken) != "":
		profile = domain.Profile{Name: name}
	default:
		return domain.Profile{}, err
	}

	if a.cfg.API.BaseURL != "" {
		profile.BaseURL = a.cfg.API.BaseURL
	}
	if profile.BaseURL == "" {
		return domain.Profile{}, fmt.Errorf("profile %s: %w (run `inbox profile set --base-url URL`)", name, errNoBaseURL)
	}
	return profile, nil
}

func (a *app) sessionSource(name domain.ProfileName) ports.SessionSource {
	if token := a.getenv(envToken); token != "" {
		return session.NewStatic(token, a.clock)
	}
	return session.NewStoreSource(a.profiles, a.secrets, name, a.clock)
}

// openEngine builds the sync engine for the active profile. A live engine
// polls until ctx ends; otherwise it only serves explicit operations.
// Callers own the returned engine and must Close it.
func (a *app) openEngine(ctx context.Context, live bool) (*application.Engine, domain.Profile, error) {
	profile, err := a.activeProfile(ctx)
	if err != nil {
		return nil, domain.Profile{}, err
	}

	source := a.sessionSource(profile.Name)
	client := rest.NewClient(profile.BaseURL, source, a.cfg.API.RequestTimeout)
	engine := application.NewEngine(client, client, source, application.EngineOptions{
		PeersInterval:    a.cfg.Polling.PeersInterval,
		MessagesInterval: a.cfg.Polling.MessagesInterval,
		CountsInterval:   a.cfg.Polling.CountsInterval,
		ReconcileDelay:   a.cfg.Polling.ReconcileDelay,
		Self: application.Sender{
			ID:          profile.UserID,
			DisplayName: profile.DisplayName,
		},
		Clock: a.clock,
	})

	if live {
		err = engine.Start(ctx)
	} else if _, err = source.Token(ctx); err == nil {
		engine.SetAuthenticated(true)
	}
	if err != nil {
		engine.Close()
		return nil, profile, signInHint(profile.Name, err)
	}
	return engine, profile, nil
}

func signInHint(name domain.ProfileName, err error) error {
	if !domain.IsAuthFailure(err) {
		return err
	}
	return fmt.Errorf("profile %s: %w (run `inbox auth set-token`)", name, err)
}
