package serials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/veritag/veritag/internal/common"
	"github.com/veritag/veritag/internal/dbx"
	"github.com/veritag/veritag/internal/server/models"
)

// PostgresRepository stores each serial as a row keyed (product_id, serial_no)
// with an ordinal position column preserving insertion order. ReplaceList is
// a transactional delete+insert, which gives the same atomic full-overwrite
// semantics as the blob engine.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetList(ctx context.Context, productID string) ([]models.ProductSerialNumber, error) {
	query :=
		`SELECT product_id, serial_no, user_serial_no, print_version, created_at, created_by, updated_at, updated_by
		 FROM product_serial_numbers
		 WHERE product_id = $1
		 ORDER BY position
		 `

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := []models.ProductSerialNumber{}
	for rows.Next() {
		var sn models.ProductSerialNumber
		if err := rows.Scan(&sn.ProductID, &sn.SerialNo, &sn.UserSerialNo, &sn.PrintVersion,
			&sn.CreatedAt, &sn.CreatedBy, &sn.UpdatedAt, &sn.UpdatedBy); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func (r *PostgresRepository) ReplaceList(ctx context.Context, productID string, list []models.ProductSerialNumber) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM product_serial_numbers WHERE product_id = $1`, productID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		query :=
			`INSERT INTO product_serial_numbers
			 (product_id, serial_no, user_serial_no, print_version, position, created_at, created_by, updated_at, updated_by)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 `

		for i, sn := range list {
			if _, err := tx.ExecContext(ctx, query,
				productID, sn.SerialNo, sn.UserSerialNo, sn.PrintVersion, i,
				sn.CreatedAt, sn.CreatedBy, sn.UpdatedAt, sn.UpdatedBy); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) FindBySerial(ctx context.Context, serialNo string) (string, *models.ProductSerialNumber, error) {
	query :=
		`SELECT product_id, serial_no, user_serial_no, print_version, created_at, created_by, updated_at, updated_by
		 FROM product_serial_numbers
		 WHERE serial_no = $1
		 `

	sn := &models.ProductSerialNumber{}
	err := r.db.QueryRowContext(ctx, query, serialNo).Scan(
		&sn.ProductID, &sn.SerialNo, &sn.UserSerialNo, &sn.PrintVersion,
		&sn.CreatedAt, &sn.CreatedBy, &sn.UpdatedAt, &sn.UpdatedBy)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, common.ErrorNotFound
		}
		return "", nil, fmt.Errorf("db error: %w", err)
	}

	return sn.ProductID, sn, nil
}

func (r *PostgresRepository) ProductIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT product_id FROM product_serial_numbers ORDER BY product_id`)
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
	if _, err := r.db.ExecContext(ctx, `DELETE FROM product_serial_numbers`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
