package builder

import (
	"builderboard/internal/model"
)

// 归因撮合：把用户成交流和builder成交流做一一配对
// 候选索引按 (user, coin, side, px, sz) 分桶，时间容差只在桶内检查，
// 避免 O(n·m) 的全量两两比较

type bucketKey struct {
	user  string
	coin  string
	isBuy bool
	px    float64
	sz    float64
}

type candidate struct {
	timeMs int64
	order  int // 插入序，同差值时的平局裁决
	used   bool
}

// Matcher 单次撮合调用内的可变候选池，用完即弃，不做跨请求共享
type Matcher struct {
	windowMs int64
	buckets  map[bucketKey][]*candidate
	hasData  bool
}

// NewMatcher windowMs 为撮合时间容差（毫秒）
func NewMatcher(builderFills []model.BuilderFill, windowMs int64) *Matcher {
	m := &Matcher{
		windowMs: windowMs,
		buckets:  make(map[bucketKey][]*candidate),
		hasData:  len(builderFills) > 0,
	}
	for i, bf := range builderFills {
		key := bucketKey{user: bf.User, coin: bf.Coin, isBuy: bf.IsBuy, px: bf.Px, sz: bf.Sz}
		m.buckets[key] = append(m.buckets[key], &candidate{timeMs: bf.TimeMs, order: i})
	}
	return m
}

// Match 为每笔用户成交打归因标记
// builder数据完全缺失时全部标记 Unknown；否则逐笔在桶内找时间差最小的未消费候选，
// 配对成功的候选立即从池中消费掉，防止一笔builder成交洗白多笔用户成交
func (m *Matcher) Match(userFills []model.Fill) []model.AttributedFill {
	out := make([]model.AttributedFill, 0, len(userFills))
	for _, f := range userFills {
		out = append(out, model.AttributedFill{Fill: f, Attribution: m.matchOne(&f)})
	}
	return out
}

func (m *Matcher) matchOne(f *model.Fill) model.Attribution {
	if !m.hasData {
		return model.AttributionUnknown
	}

	key := bucketKey{user: f.User, coin: f.Coin, isBuy: f.IsBuy, px: f.Px, sz: f.Sz}
	var best *candidate
	var bestDelta int64
	for _, c := range m.buckets[key] {
		if c.used {
			continue
		}
		delta := f.TimeMs - c.timeMs
		if delta < 0 {
			delta = -delta
		}
		if delta > m.windowMs {
			continue
		}
		// 最小时间差优先，同差值按插入序
		if best == nil || delta < bestDelta {
			best = c
			bestDelta = delta
		}
	}
	if best == nil {
		return model.NotAttributed
	}
	best.used = true
	return model.Attributed
}
