package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-launchpad/internal/domain"
	"solana-launchpad/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	token_id, mint, name, symbol, decimals, total_supply, circulating_supply,
	initial_price, curve_exponent, virtual_sol_reserve, virtual_token_reserve,
	graduation_threshold_usd, status, creator_wallet, volume_sol, market_cap_usd, created_at
`

// Insert adds a new token. Returns ErrDuplicateKey if token_id or mint exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := s.pool.Exec(ctx, query,
		t.TokenID,
		t.Mint,
		t.Name,
		t.Symbol,
		t.Decimals,
		t.TotalSupply,
		t.CirculatingSupply,
		t.Curve.InitialPrice,
		t.Curve.CurveExponent,
		t.Curve.VirtualSolReserve,
		t.Curve.VirtualTokenReserve,
		t.Curve.GraduationThresholdUSD,
		string(t.Status),
		t.CreatorWallet,
		t.VolumeSOL,
		t.MarketCapUSD,
		t.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(ctx context.Context, tokenID string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE token_id = $1`

	t, err := scanToken(s.pool.QueryRow(ctx, query, tokenID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by id: %w", err)
	}
	return t, nil
}

// GetByMint retrieves a token by mint address. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByMint(ctx context.Context, mint string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE mint = $1`

	t, err := scanToken(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by mint: %w", err)
	}
	return t, nil
}

// GetByStatus retrieves all tokens with the given status, newest first.
func (s *TokenStore) GetByStatus(ctx context.Context, status domain.TokenStatus) ([]*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE status = $1 ORDER BY created_at DESC, token_id ASC`

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("get tokens by status: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// GetByCreator retrieves all tokens launched by a creator wallet, newest first.
func (s *TokenStore) GetByCreator(ctx context.Context, wallet string) ([]*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE creator_wallet = $1 ORDER BY created_at DESC, token_id ASC`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get tokens by creator: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// GetAll retrieves all tokens, newest first.
func (s *TokenStore) GetAll(ctx context.Context) ([]*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens ORDER BY created_at DESC, token_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// GetNewest retrieves the most recently launched tokens, newest first.
func (s *TokenStore) GetNewest(ctx context.Context, limit int) ([]*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens ORDER BY created_at DESC, token_id ASC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get newest tokens: %w", err)
	}
	defer rows.Close()

	return scanTokens(rows)
}

// UpdateStatusIf atomically sets status to "to" only if the current status
// equals "from". Returns true if the row was updated.
func (s *TokenStore) UpdateStatusIf(ctx context.Context, tokenID string, from, to domain.TokenStatus) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tokens SET status = $1 WHERE token_id = $2 AND status = $3`,
		string(to), tokenID, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("update token status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Distinguish "wrong current status" from "no such token".
	var exists bool
	err = s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tokens WHERE token_id = $1)`, tokenID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check token exists: %w", err)
	}
	if !exists {
		return false, storage.ErrNotFound
	}
	return false, nil
}

// UpdateMarketSnapshot updates the circulating supply, volume and
// market-cap snapshot of a token.
func (s *TokenStore) UpdateMarketSnapshot(ctx context.Context, tokenID string, circulatingSupply, volumeSOL, marketCapUSD float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tokens SET circulating_supply = $1, volume_sol = $2, market_cap_usd = $3 WHERE token_id = $4`,
		circulatingSupply, volumeSOL, marketCapUSD, tokenID,
	)
	if err != nil {
		return fmt.Errorf("update market snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanToken scans a single row into a Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	var statusStr string

	err := row.Scan(
		&t.TokenID,
		&t.Mint,
		&t.Name,
		&t.Symbol,
		&t.Decimals,
		&t.TotalSupply,
		&t.CirculatingSupply,
		&t.Curve.InitialPrice,
		&t.Curve.CurveExponent,
		&t.Curve.VirtualSolReserve,
		&t.Curve.VirtualTokenReserve,
		&t.Curve.GraduationThresholdUSD,
		&statusStr,
		&t.CreatorWallet,
		&t.VolumeSOL,
		&t.MarketCapUSD,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TokenStatus(statusStr)
	return &t, nil
}

// scanTokens scans multiple rows into a slice of Token.
func scanTokens(rows pgx.Rows) ([]*domain.Token, error) {
	var tokens []*domain.Token

	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return tokens, nil
}
