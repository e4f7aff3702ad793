package domain

// CustomWallet is an extra fee recipient in a token's tax split.
type CustomWallet struct {
	Address string  `json:"address"`
	Percent float64 `json:"percent"`
	Label   string  `json:"label,omitempty"`
}

// TaxConfig is a token's opt-in fee-split configuration, set once at launch.
// Percentages are whole percents of the claimed fee amount.
// Corresponds to the tax_configs table (1:1 with tokens).
type TaxConfig struct {
	TokenID          string
	BurnEnabled      bool
	BurnPercent      float64
	LpEnabled        bool
	LpPercent        float64
	DividendsEnabled bool
	DividendsPercent float64
	CustomWallets    []CustomWallet
}
