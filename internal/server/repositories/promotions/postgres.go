package promotions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/dbx"
	"github.com/veritag/veritag/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, productID string) (*models.Promotion, error) {
	query :=
		`SELECT product_id, name, value FROM promotions
		 WHERE product_id = $1
		 `

	p := &models.Promotion{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&p.ProductID, &p.Name, &p.Value)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Set(ctx context.Context, promo *models.Promotion) error {
	query :=
		`INSERT INTO promotions (product_id, name, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (product_id) DO UPDATE SET name = EXCLUDED.name, value = EXCLUDED.value
		 `

	if _, err := r.db.ExecContext(ctx, query, promo.ProductID, promo.Name, promo.Value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, productID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM promotions WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM promotions`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
