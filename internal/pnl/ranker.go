package pnl

import (
	"sort"

	"builderboard/internal/model"
)

// 排行榜排序：按单一指标降序，并列时按地址字典序升序保证结果稳定可复现

// Rank 把逐用户的盈亏结果排成名次表
// builderOnly 时剔除非 Clean 的用户；returnPct 指标下基线缺失(ReturnPct==nil)的用户不参与排名
func Rank(results []model.PnLResult, metric model.LeaderboardMetric, builderOnly bool) []model.LeaderboardEntry {
	type scored struct {
		res   *model.PnLResult
		value float64
	}
	candidates := make([]scored, 0, len(results))
	for i := range results {
		r := &results[i]
		if builderOnly && r.Taint != model.TaintClean {
			continue
		}
		value, ok := metricValue(r, metric)
		if !ok {
			continue
		}
		candidates = append(candidates, scored{res: r, value: value})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].value != candidates[j].value {
			return candidates[i].value > candidates[j].value
		}
		return candidates[i].res.User < candidates[j].res.User
	})

	entries := make([]model.LeaderboardEntry, 0, len(candidates))
	for i, c := range candidates {
		entries = append(entries, model.LeaderboardEntry{
			Rank:        i + 1,
			User:        c.res.User,
			MetricValue: c.value,
			TradeCount:  c.res.TradeCount,
			Taint:       c.res.Taint,
		})
	}
	return entries
}

func metricValue(r *model.PnLResult, metric model.LeaderboardMetric) (float64, bool) {
	switch metric {
	case model.MetricVolume:
		return r.Volume, true
	case model.MetricReturnPct:
		if r.ReturnPct == nil {
			return 0, false
		}
		return *r.ReturnPct, true
	default:
		return r.RealizedPnl, true
	}
}
