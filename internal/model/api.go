package model

// handler 层的请求参数，绑定校验交给 gin validator（wallet 为自定义规则）

type TradesReq struct {
	User        string `form:"user" binding:"required,wallet"`
	Coin        string `form:"coin"`
	FromMs      int64  `form:"fromMs"`
	ToMs        int64  `form:"toMs"`
	BuilderOnly bool   `form:"builderOnly"`
}

type PositionHistoryReq struct {
	User        string `form:"user" binding:"required,wallet"`
	Coin        string `form:"coin"`
	FromMs      int64  `form:"fromMs"`
	ToMs        int64  `form:"toMs"`
	BuilderOnly bool   `form:"builderOnly"`
}

type CurrentPositionsReq struct {
	User string `form:"user" binding:"required,wallet"`
}

type PnlReq struct {
	User            string   `form:"user" binding:"required,wallet"`
	Coin            string   `form:"coin"`
	FromMs          int64    `form:"fromMs"`
	ToMs            int64    `form:"toMs"`
	BuilderOnly     bool     `form:"builderOnly"`
	MaxStartCapital *float64 `form:"maxStartCapital"`
}

type LeaderboardReq struct {
	Users           []string          `json:"users" binding:"omitempty,dive,wallet"`
	Coin            string            `json:"coin"`
	FromMs          int64             `json:"fromMs" binding:"required"`
	ToMs            int64             `json:"toMs" binding:"required,gtfield=FromMs"`
	Metric          LeaderboardMetric `json:"metric"`
	BuilderOnly     bool              `json:"builderOnly"`
	MaxStartCapital *float64          `json:"maxStartCapital"`
	Combined        bool              `json:"combined"` // true 时返回全指标行，不做单指标排名
}

type CompetitorAddReq struct {
	Address  string `json:"address" binding:"required,wallet"`
	Nickname string `json:"nickname"`
}
