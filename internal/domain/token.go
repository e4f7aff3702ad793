package domain

// TokenStatus is the lifecycle state of a launched token.
type TokenStatus string

const (
	// TokenStatusActive means the token trades against the bonding curve.
	TokenStatusActive TokenStatus = "ACTIVE"
	// TokenStatusGraduated means liquidity has been migrated to an external pool.
	TokenStatusGraduated TokenStatus = "GRADUATED"
	// TokenStatusBanned is set by an admin; orthogonal to graduation.
	TokenStatusBanned TokenStatus = "BANNED"
)

// CurveParams are the immutable bonding-curve parameters fixed at launch.
type CurveParams struct {
	InitialPrice           float64 // SOL per token at supply 0
	CurveExponent          float64 // > 0, steepens the curve
	VirtualSolReserve      float64 // SOL-side dampening offset
	VirtualTokenReserve    float64 // token-side dampening offset
	GraduationThresholdUSD float64 // market cap that triggers graduation
}

// Token represents a launched token priced by the bonding curve.
// Corresponds to the tokens table in PostgreSQL.
// Curve parameters are immutable after creation; Status is mutated only
// through compare-and-set (see storage.TokenStore.UpdateStatusIf).
type Token struct {
	TokenID           string // PRIMARY KEY, deterministic hash of mint|creator
	Mint              string // token mint address
	Name              string
	Symbol            string
	Decimals          int
	TotalSupply       float64 // whole tokens
	CirculatingSupply float64 // tokens sold off the curve so far
	Curve             CurveParams
	Status            TokenStatus
	CreatorWallet     string
	VolumeSOL         float64 // accumulated trade volume snapshot
	MarketCapUSD      float64 // last computed market cap snapshot
	CreatedAt         int64   // Unix timestamp in milliseconds
}
