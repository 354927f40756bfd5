package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/veritag/veritag/internal/server/migrations"
	"github.com/veritag/veritag/internal/server/repositories/organizations"
	"github.com/veritag/veritag/internal/server/repositories/products"
	"github.com/veritag/veritag/internal/server/repositories/promotions"
	"github.com/veritag/veritag/internal/server/repositories/resellers"
	"github.com/veritag/veritag/internal/server/repositories/rewards"
	"github.com/veritag/veritag/internal/server/repositories/serials"
	"github.com/veritag/veritag/internal/server/repositories/verifications"
)

type PostgresRepositoryManager struct {
	db            *sql.DB
	organizations *organizations.PostgresRepository
	products      *products.PostgresRepository
	resellers     *resellers.PostgresRepository
	serials       *serials.PostgresRepository
	verifications *verifications.PostgresRepository
	rewards       *rewards.PostgresRepository
	promotions    *promotions.PostgresRepository
}

func NewPostgresRepositoryManager(dsn string) (*PostgresRepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:            db,
		organizations: organizations.NewPostgresRepository(db),
		products:      products.NewPostgresRepository(db),
		resellers:     resellers.NewPostgresRepository(db),
		serials:       serials.NewPostgresRepository(db),
		verifications: verifications.NewPostgresRepository(db),
		rewards:       rewards.NewPostgresRepository(db),
		promotions:    promotions.NewPostgresRepository(db),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func (m *PostgresRepositoryManager) Conn() *sql.DB { return m.db }

func (m *PostgresRepositoryManager) Organizations() organizations.Repository { return m.organizations }
func (m *PostgresRepositoryManager) Products() products.Repository           { return m.products }
func (m *PostgresRepositoryManager) Resellers() resellers.Repository         { return m.resellers }
func (m *PostgresRepositoryManager) Serials() serials.Repository             { return m.serials }
func (m *PostgresRepositoryManager) Verifications() verifications.Repository { return m.verifications }
func (m *PostgresRepositoryManager) Rewards() rewards.Repository             { return m.rewards }
func (m *PostgresRepositoryManager) Promotions() promotions.Repository       { return m.promotions }

func (m *PostgresRepositoryManager) ResetAll(ctx context.Context) error {
	if err := m.verifications.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.serials.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.rewards.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.promotions.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.resellers.DeleteAll(ctx); err != nil {
		return err
	}
	if err := m.products.DeleteAll(ctx); err != nil {
		return err
	}
	return m.organizations.DeleteAll(ctx)
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}
