package resellers

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

func (r *PostgresRepository) Create(ctx context.Context, res *models.Reseller) error {
	query :=
		`INSERT INTO resellers (id, org_id, name, public_key, date_joined, created_at, created_by, updated_at, updated_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 `

	_, err := r.db.ExecContext(ctx, query,
		res.ID, res.OrgID, res.Name, res.PublicKey, res.DateJoined,
		res.CreatedAt, res.CreatedBy, res.UpdatedAt, res.UpdatedBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Reseller, error) {
	query :=
		`SELECT id, org_id, name, public_key, date_joined, created_at, created_by, updated_at, updated_by
		 FROM resellers
		 WHERE id = $1
		 `

	res := &models.Reseller{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID, &res.OrgID, &res.Name, &res.PublicKey, &res.DateJoined,
		&res.CreatedAt, &res.CreatedBy, &res.UpdatedAt, &res.UpdatedBy)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return res, nil
}

func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string) ([]models.Reseller, error) {
	query :=
		`SELECT id, org_id, name, public_key, date_joined, created_at, created_by, updated_at, updated_by
		 FROM resellers
		 WHERE org_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := []models.Reseller{}
	for rows.Next() {
		var res models.Reseller
		if err := rows.Scan(&res.ID, &res.OrgID, &res.Name, &res.PublicKey, &res.DateJoined,
			&res.CreatedAt, &res.CreatedBy, &res.UpdatedAt, &res.UpdatedBy); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM resellers`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
