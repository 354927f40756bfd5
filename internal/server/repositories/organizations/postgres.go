package organizations

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

func (r *PostgresRepository) Create(ctx context.Context, org *models.Organization) error {
	query :=
		`INSERT INTO organizations (id, name, description, private_key, created_at, created_by, updated_at, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err := r.db.ExecContext(ctx, query,
		org.ID, org.Name, org.Description, org.PrivateKey,
		org.CreatedAt, org.CreatedBy, org.UpdatedAt, org.UpdatedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Organization, error) {
	query :=
		`SELECT id, name, description, private_key, created_at, created_by, updated_at, updated_by
		 FROM organizations
		 WHERE id = $1
		 `

	org := &models.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.Description, &org.PrivateKey,
		&org.CreatedAt, &org.CreatedBy, &org.UpdatedAt, &org.UpdatedBy)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return org, nil
}

func (r *PostgresRepository) Update(ctx context.Context, org *models.Organization) error {
	query :=
		`UPDATE organizations
		 SET name = $2, description = $3, updated_at = $4, updated_by = $5
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, org.ID, org.Name, org.Description, org.UpdatedAt, org.UpdatedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Organization, error) {
	query :=
		`SELECT id, name, description, private_key, created_at, created_by, updated_at, updated_by
		 FROM organizations
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.Description, &org.PrivateKey,
			&org.CreatedAt, &org.CreatedBy, &org.UpdatedAt, &org.UpdatedBy); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return orgs, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM organizations`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
