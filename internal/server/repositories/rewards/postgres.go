package rewards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.UserRewards, error) {
	query :=
		`SELECT user_id, total_points, verification_count, first_verifications, last_reward_time
		 FROM user_rewards
		 WHERE user_id = $1
		 `

	ur := &models.UserRewards{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&ur.UserID, &ur.TotalPoints, &ur.VerificationCount, &ur.FirstVerifications, &ur.LastRewardTime)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ur, nil
}

func (r *PostgresRepository) Apply(ctx context.Context, userID string, points uint32, firstVerification bool, now time.Time) error {
	firstInc := 0
	if firstVerification {
		firstInc = 1
	}

	query :=
		`INSERT INTO user_rewards (user_id, total_points, verification_count, first_verifications, last_reward_time)
		 VALUES ($1, $2, 1, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		     total_points = user_rewards.total_points + EXCLUDED.total_points,
		     verification_count = user_rewards.verification_count + 1,
		     first_verifications = user_rewards.first_verifications + EXCLUDED.first_verifications,
		     last_reward_time = EXCLUDED.last_reward_time
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, points, firstInc, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) HasVerified(ctx context.Context, userID, productID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		     SELECT 1 FROM user_verified_products WHERE user_id = $1 AND product_id = $2
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, userID, productID string) error {
	query :=
		`INSERT INTO user_verified_products (user_id, product_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, product_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_verified_products`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_rewards`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
