package verifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/veritag/veritag/internal/dbx"
	"github.com/veritag/veritag/internal/server/models"
)

// PostgresRepository stores one row per verification with an ordinal position
// column; ReplaceList is a transactional delete+insert.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetList(ctx context.Context, productID string) ([]models.ProductVerification, error) {
	query :=
		`SELECT id, product_id, serial_no, print_version, status, created_at, created_by, reward_claimed, reward_transaction_id
		 FROM product_verifications
		 WHERE product_id = $1
		 ORDER BY position
		 `

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := []models.ProductVerification{}
	for rows.Next() {
		var (
			v    models.ProductVerification
			txID sql.NullString
		)
		if err := rows.Scan(&v.ID, &v.ProductID, &v.SerialNo, &v.PrintVersion, &v.Status,
			&v.CreatedAt, &v.CreatedBy, &v.RewardClaimed, &txID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if txID.Valid {
			v.RewardTransactionID = txID.String
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) ReplaceList(ctx context.Context, productID string, list []models.ProductVerification) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_verifications WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		query :=
			`INSERT INTO product_verifications
			 (id, product_id, serial_no, print_version, status, position, created_at, created_by, reward_claimed, reward_transaction_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 `

		for i, v := range list {
			var txID any
			if v.RewardTransactionID != "" {
				txID = v.RewardTransactionID
			}
			if _, err := tx.ExecContext(ctx, query,
				v.ID, productID, v.SerialNo, v.PrintVersion, string(v.Status), i,
				v.CreatedAt, v.CreatedBy, v.RewardClaimed, txID); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) ProductIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT product_id FROM product_verifications ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM product_verifications`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
