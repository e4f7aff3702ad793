package postgres

import (
	"context"
	"fmt"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// StakerStore implements storage.StakerStore using PostgreSQL.
type StakerStore struct {
	pool *Pool
}

// NewStakerStore creates a new StakerStore.
func NewStakerStore(pool *Pool) *StakerStore {
	return &StakerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StakerStore = (*StakerStore)(nil)

// Insert adds a new staker. Returns ErrDuplicateKey if wallet exists.
func (s *StakerStore) Insert(ctx context.Context, st *domain.Staker) error {
	query := `
		INSERT INTO stakers (
			wallet, staked_amount, lock_duration_days, lock_end_time,
			pending_rewards, tier, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		st.Wallet,
		st.StakedAmount,
		st.LockDurationDays,
		st.LockEndTime,
		st.PendingRewards,
		st.Tier,
		st.CreatedAt,
		st.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert staker: %w", err)
	}
	return nil
}

// GetByWallet retrieves a staker. Returns ErrNotFound if not exists.
func (s *StakerStore) GetByWallet(ctx context.Context, wallet string) (*domain.Staker, error) {
	query := `
		SELECT wallet, staked_amount, lock_duration_days, lock_end_time,
		       pending_rewards, tier, created_at, updated_at
		FROM stakers
		WHERE wallet = $1
	`

	var st domain.Staker
	err := s.pool.QueryRow(ctx, query, wallet).Scan(
		&st.Wallet,
		&st.StakedAmount,
		&st.LockDurationDays,
		&st.LockEndTime,
		&st.PendingRewards,
		&st.Tier,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get staker: %w", err)
	}
	return &st, nil
}

// Update overwrites an existing staker. Returns ErrNotFound if not exists.
func (s *StakerStore) Update(ctx context.Context, st *domain.Staker) error {
	query := `
		UPDATE stakers
		SET staked_amount = $1, lock_duration_days = $2, lock_end_time = $3,
		    pending_rewards = $4, tier = $5, updated_at = $6
		WHERE wallet = $7
	`

	tag, err := s.pool.Exec(ctx, query,
		st.StakedAmount,
		st.LockDurationDays,
		st.LockEndTime,
		st.PendingRewards,
		st.Tier,
		st.UpdatedAt,
		st.Wallet,
	)
	if err != nil {
		return fmt.Errorf("update staker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetAll retrieves all stakers.
func (s *StakerStore) GetAll(ctx context.Context) ([]*domain.Staker, error) {
	query := `
		SELECT wallet, staked_amount, lock_duration_days, lock_end_time,
		       pending_rewards, tier, created_at, updated_at
		FROM stakers
		ORDER BY wallet ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all stakers: %w", err)
	}
	defer rows.Close()

	var stakers []*domain.Staker
	for rows.Next() {
		var st domain.Staker
		err := rows.Scan(
			&st.Wallet,
			&st.StakedAmount,
			&st.LockDurationDays,
			&st.LockEndTime,
			&st.PendingRewards,
			&st.Tier,
			&st.CreatedAt,
			&st.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan staker row: %w", err)
		}
		stakers = append(stakers, &st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staker rows: %w", err)
	}

	return stakers, nil
}
