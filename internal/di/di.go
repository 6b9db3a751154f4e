// Package di wires configuration into the service's collaborators.
package di

import (
	"context"

	"github.com/ecdye/jwt-pizza-service/internal/config"
	"github.com/ecdye/jwt-pizza-service/internal/factory"
	"github.com/ecdye/jwt-pizza-service/internal/store/sqlstore"
	"github.com/ecdye/jwt-pizza-service/internal/token"
)

func ProvideStore(ctx context.Context, cfg *config.Config) (*sqlstore.DB, error) {
	db, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		ConnTimeout:  cfg.Database.ConnTimeout,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Admin.Seed {
		if err := db.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func ProvideIssuer(cfg *config.Config) *token.Issuer {
	return token.NewIssuer(token.IssueConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	})
}

func ProvideFactory(cfg *config.Config) *factory.Client {
	return factory.NewClient(cfg.Factory.URL, cfg.Factory.APIKey)
}
