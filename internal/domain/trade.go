package domain

// TradeSide is the direction of a curve trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// TradeEvent is an executed curve trade, stored append-only in ClickHouse
// for volume/trending analytics.
type TradeEvent struct {
	TokenID     string
	Mint        string
	Side        TradeSide
	SolAmount   float64 // SOL leg of the trade
	TokenAmount float64 // token leg of the trade
	Price       float64 // execution price (SOL per token)
	FeeSOL      float64 // platform fee taken
	Wallet      string
	Timestamp   int64 // Unix timestamp in milliseconds
}
