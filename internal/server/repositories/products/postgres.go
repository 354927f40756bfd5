package products

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

func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) error {
	query :=
		`INSERT INTO products (id, org_id, name, category, description, public_key, created_at, created_by, updated_at, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.OrgID, p.Name, p.Category, p.Description, p.PublicKey,
		p.CreatedAt, p.CreatedBy, p.UpdatedAt, p.UpdatedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	query :=
		`SELECT id, org_id, name, category, description, public_key, created_at, created_by, updated_at, updated_by
		 FROM products
		 WHERE id = $1
		 `

	p := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.OrgID, &p.Name, &p.Category, &p.Description, &p.PublicKey,
		&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Product) error {
	query :=
		`UPDATE products
		 SET name = $2, category = $3, description = $4, updated_at = $5, updated_by = $6
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, p.ID, p.Name, p.Category, p.Description, p.UpdatedAt, p.UpdatedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]models.Product, error) {
	query :=
		`SELECT id, org_id, name, category, description, public_key, created_at, created_by, updated_at, updated_by
		 FROM products
		 WHERE org_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.OrgID, &p.Name, &p.Category, &p.Description, &p.PublicKey,
			&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
