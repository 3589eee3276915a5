// Package bootstrap wires configuration into the persistence layer and the
// registration service. It is shared by the HTTP server and the admin CLI.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	badgerdb "github.com/dgraph-io/badger/v4"

	"membershipevents/config"
	"membershipevents/internal/adapters/auth"
	"membershipevents/internal/adapters/cache"
	"membershipevents/internal/adapters/email"
	"membershipevents/internal/domain"
	badgerstore "membershipevents/internal/repository/badger"
	"membershipevents/internal/repository/postgres"
	"membershipevents/internal/services"
)

// Storage is the opened persistence layer for the configured backend.
type Storage struct {
	Backend      string
	DB           *sql.DB
	Events       domain.EventCatalog
	Users        domain.UserDirectory
	Inscriptions domain.InscriptionStore

	kv *badgerdb.DB
}

// OpenStorage connects to postgres, applies migrations when enabled, and opens
// the inscription store selected by STORAGE_BACKEND. The caller must Close it.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if cfg.RunMigrations {
		if err := postgres.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	s, err := NewStorage(db, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStorage builds the storage layer on an open database handle. Event and
// user lookups always come from postgres; only inscriptions follow the backend.
func NewStorage(db *sql.DB, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	s := &Storage{
		Backend: cfg.StorageBackend,
		DB:      db,
		Events:  cache.NewCachedEventCatalog(postgres.NewEventRepository(db), cfg.CatalogCacheTTL, logger),
		Users:   cache.NewCachedUserDirectory(postgres.NewUserRepository(db), cfg.CatalogCacheTTL, logger),
	}

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		s.Inscriptions = postgres.NewInscriptionStore(db)
	case config.BackendBadger:
		bcfg := badgerstore.DefaultConfig(cfg.BadgerPath)
		if cfg.BadgerInMemory {
			bcfg = badgerstore.InMemoryConfig()
		}
		bcfg.Logger = logger.With("component", "badger")
		kv, err := badgerstore.Open(bcfg)
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		s.kv = kv
		s.Inscriptions = badgerstore.NewInscriptionStore(kv, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}

	logger.Info("inscription store ready", "backend", cfg.StorageBackend)
	return s, nil
}

// Close releases the badger database, if any, and the postgres pool.
func (s *Storage) Close() error {
	var errs []error
	if s.kv != nil {
		errs = append(errs, s.kv.Close())
	}
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	return errors.Join(errs...)
}

// NewRegistrationService assembles the registration service with its mailer
// and role policy.
func NewRegistrationService(cfg *config.Config, s *Storage, logger *slog.Logger) (domain.RegistrationService, error) {
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	return services.NewRegistrationService(s.Events, s.Users, s.Inscriptions, auth.NewRolePolicy(), emailService, logger), nil
}
