package model

// Trade 对外输出的标准化成交记录
type Trade struct {
	TimeMs      int64   `json:"time_ms"`
	Coin        string  `json:"coin"`
	Side        string  `json:"side"` // "Buy" / "Sell"
	Px          float64 `json:"px"`
	Sz          float64 `json:"sz"`
	Fee         float64 `json:"fee"`
	ClosedPnl   float64 `json:"closed_pnl"`
	Attribution string  `json:"attribution"`
}

// TradeFromFill 把归因后的成交转成对外的 Trade
func TradeFromFill(f AttributedFill) Trade {
	side := "Sell"
	if f.IsBuy {
		side = "Buy"
	}
	return Trade{
		TimeMs:      f.TimeMs,
		Coin:        f.Coin,
		Side:        side,
		Px:          f.Px,
		Sz:          f.Sz,
		Fee:         f.Fee,
		ClosedPnl:   f.ClosedPnl,
		Attribution: f.Attribution.String(),
	}
}
