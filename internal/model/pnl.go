package model

// PnLResult 一个 (用户, 币种或全部, 时间窗口) 的盈亏汇总
type PnLResult struct {
	User        string   `json:"user"`
	Coin        string   `json:"coin,omitempty"` // 为空表示全部币种
	FromMs      int64    `json:"from_ms"`
	ToMs        int64    `json:"to_ms"`
	RealizedPnl float64  `json:"realized_pnl"`
	ReturnPct   *float64 `json:"return_pct,omitempty"` // 权益基线不可得时为空
	FeesPaid    float64  `json:"fees_paid"`
	TradeCount  int      `json:"trade_count"`
	Volume      float64  `json:"volume"`
	Taint       Taint    `json:"taint"`
}

// LeaderboardMetric 排行榜排序指标
type LeaderboardMetric string

const (
	MetricPnl       LeaderboardMetric = "pnl"
	MetricVolume    LeaderboardMetric = "volume"
	MetricReturnPct LeaderboardMetric = "returnPct"
)

func (m LeaderboardMetric) Valid() bool {
	switch m {
	case MetricPnl, MetricVolume, MetricReturnPct:
		return true
	}
	return false
}

// LeaderboardEntry 排行榜一行
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	User        string  `json:"user"`
	MetricValue float64 `json:"metric_value"`
	TradeCount  int     `json:"trade_count"`
	Taint       Taint   `json:"taint"`
}

// CombinedLeaderboardEntry 带全部指标的排行数据，便于前端自由切换排序
type CombinedLeaderboardEntry struct {
	User       string  `json:"user"`
	Pnl        float64 `json:"pnl"`
	Volume     float64 `json:"volume"`
	ReturnPct  float64 `json:"return_pct"`
	TradeCount int     `json:"trade_count"`
	Taint      Taint   `json:"taint"`
}
