package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pac-voluntarios/portal/internal/cache"
	"github.com/pac-voluntarios/portal/internal/config"
	"github.com/pac-voluntarios/portal/internal/db"
	"github.com/pac-voluntarios/portal/internal/gate"
	portalhttp "github.com/pac-voluntarios/portal/internal/http"
	"github.com/pac-voluntarios/portal/internal/logging"
	"github.com/pac-voluntarios/portal/internal/models"
	"github.com/pac-voluntarios/portal/internal/profile"
	"github.com/pac-voluntarios/portal/internal/security"
	"github.com/pac-voluntarios/portal/internal/session"
	"github.com/pac-voluntarios/portal/internal/stepup"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateProfileParams holds inputs for profile creation from the CLI.
type CreateProfileParams struct {
	Email     string
	Name      string
	Matricula string
	Role      string
	Password  string
	Inactive  bool
}

// loadConfig resolves and loads the config file and configures logging.
func loadConfig(cfg config.AppConfig) (config.Config, io.Closer, error) {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	if !config.ConfigExists(configPath) {
		return config.Config{}, nil, fmt.Errorf("no config file at %s; pass --config or set PORTAL_CONFIG", configPath)
	}
	conf, errLoad := config.Load(configPath)
	if errLoad != nil {
		return config.Config{}, nil, errLoad
	}
	closer, errLog := logging.Setup(conf.Log)
	if errLog != nil {
		return config.Config{}, nil, errLog
	}
	return conf, closer, nil
}

// openDatabase opens the profile store and applies migrations.
func openDatabase(conf config.Config) (*gorm.DB, error) {
	conn, errOpen := db.Open(conf.Database.DSN)
	if errOpen != nil {
		return nil, errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return nil, errMigrate
	}
	return conn, nil
}

// newRoleCache builds the configured role cache backend.
func newRoleCache(conf config.Config) (cache.RoleCache, func(), error) {
	switch conf.Gate.CacheBackend {
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		return cache.NewRedisCache(client, conf.Redis.Prefix), func() { _ = client.Close() }, nil
	case config.CacheBackendMemory, "":
		return cache.NewMemoryCache(conf.Gate.CacheCapacity), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", conf.Gate.CacheBackend)
	}
}

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conf, closer, errLoad := loadConfig(cfg)
	if errLoad != nil {
		return errLoad
	}
	defer func() { _ = closer.Close() }()

	conn, errOpen := db.Open(conf.Database.DSN)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn.WithContext(ctx)); errMigrate != nil {
		return errMigrate
	}
	log.Infof("migrated %s database", db.DialectName(conn))
	return nil
}

// RunServer boots the portal access layer and serves until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	conf, closer, errLoad := loadConfig(cfg)
	if errLoad != nil {
		return errLoad
	}
	defer func() { _ = closer.Close() }()

	conn, errDB := openDatabase(conf)
	if errDB != nil {
		return errDB
	}

	roleCache, closeCache, errCache := newRoleCache(conf)
	if errCache != nil {
		return errCache
	}
	defer closeCache()

	policy, errPolicy := gate.ParseFailurePolicy(conf.Gate.FailurePolicy)
	if errPolicy != nil {
		return errPolicy
	}

	if db.IsSQLite(conn) {
		log.Warn("profile store is a local sqlite database; use postgres for shared deployments")
	}

	store := profile.NewGormStore(conn)
	sessions := session.NewJWTProvider(conf.JWT)
	resolver := gate.NewResolver(store, roleCache, conf.Gate.CacheTTL)
	sessionGate := gate.New(sessions, resolver, conf.Routes, policy)

	engine, errEngine := portalhttp.NewEngine(portalhttp.EngineDeps{
		Config:   conf,
		DB:       conn,
		Profiles: store,
		Sessions: sessions,
		Gate:     sessionGate,
		StepUp:   stepup.New(store),
	})
	if errEngine != nil {
		return errEngine
	}

	srv := &http.Server{Addr: conf.Server.Addr, Handler: engine}
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":     conf.Server.Addr,
			"database": db.DialectName(conn),
			"cache":    conf.Gate.CacheBackend,
			"policy":   string(policy),
		}).Info("portal access layer listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	log.Info("shutting down portal access layer")
	if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("shutdown: %w", errShutdown)
	}
	return nil
}

// CreateProfile inserts a profile with a bcrypt login password and returns its ID.
func CreateProfile(ctx context.Context, cfg config.AppConfig, params CreateProfileParams) (string, error) {
	conf, closer, errLoad := loadConfig(cfg)
	if errLoad != nil {
		return "", errLoad
	}
	defer func() { _ = closer.Close() }()

	conn, errDB := openDatabase(conf)
	if errDB != nil {
		return "", errDB
	}
	return createProfile(ctx, profile.NewGormStore(conn), params)
}

func createProfile(ctx context.Context, store profile.Store, params CreateProfileParams) (string, error) {
	email := strings.TrimSpace(params.Email)
	if email == "" {
		return "", errors.New("email is required")
	}
	role, errRole := profile.ParseRole(params.Role)
	if errRole != nil {
		return "", errRole
	}
	if role != profile.RoleAdmin && role != profile.RoleAgent {
		return "", fmt.Errorf("role must be %q or %q", profile.RoleAdmin, profile.RoleAgent)
	}
	if params.Password == "" {
		return "", errors.New("password is required")
	}
	hash, errHash := security.HashPassword(params.Password)
	if errHash != nil {
		return "", fmt.Errorf("hash password: %w", errHash)
	}

	p := &models.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: hash,
		Role:         string(role),
		Status:       !params.Inactive,
	}
	if matricula := strings.TrimSpace(params.Matricula); matricula != "" {
		p.Matricula = &matricula
	}
	if errCreate := store.Create(ctx, p); errCreate != nil {
		return "", errCreate
	}
	log.WithFields(log.Fields{"user_id": p.ID, "role": p.Role}).Info("profile created")
	return p.ID, nil
}

// ResetStepUp clears the administrative password of a profile from the CLI.
func ResetStepUp(ctx context.Context, cfg config.AppConfig, userID string) (stepup.Result, error) {
	conf, closer, errLoad := loadConfig(cfg)
	if errLoad != nil {
		return stepup.Result{}, errLoad
	}
	defer func() { _ = closer.Close() }()

	conn, errDB := openDatabase(conf)
	if errDB != nil {
		return stepup.Result{}, errDB
	}
	return stepup.New(profile.NewGormStore(conn)).Reset(ctx, userID), nil
}

// ClearRoleCache drops every cached role/status entry in the shared cache.
func ClearRoleCache(ctx context.Context, cfg config.AppConfig) error {
	conf, closer, errLoad := loadConfig(cfg)
	if errLoad != nil {
		return errLoad
	}
	defer func() { _ = closer.Close() }()

	if conf.Gate.CacheBackend != config.CacheBackendRedis {
		return errors.New("the memory role cache lives inside the server process; restart it to clear")
	}
	roleCache, closeCache, errCache := newRoleCache(conf)
	if errCache != nil {
		return errCache
	}
	defer closeCache()
	return roleCache.Clear(ctx)
}
