package consts

import "time"

const (
	// RequestId 请求id名称
	RequestId = "request_id"

	DateLayout = "20060102"
)

// redis 缓存 key 前缀
const (
	UserPnlKey         = "builderboard:pnl"
	LeaderboardKey     = "builderboard:leaderboard"
	AccountSummaryKey  = "builderboard:account"
	PositionHistoryKey = "builderboard:positions"
)

const (
	// 默认redis过期时间
	RedisExrDefault = time.Minute * 5
	// 账户权益波动快，只做短缓存
	RedisExrEquity = time.Second * 15
)
