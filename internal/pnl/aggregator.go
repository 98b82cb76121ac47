package pnl

import (
	"math"

	"builderboard/internal/model"
)

// 盈亏聚合：把带污染标记的成交流归并成一条汇总结果
// 时间窗口一律是半开区间 [FromMs, ToMs)

type Filter struct {
	FromMs      int64
	ToMs        int64
	Coin        string // 为空时跨所有币种
	BuilderOnly bool   // true 时剔除一切非 Clean 成交
}

// Keep 判断一笔成交是否落入过滤条件
func (f *Filter) Keep(fill *model.Fill, taint model.Taint) bool {
	if f.FromMs > 0 && fill.TimeMs < f.FromMs {
		return false
	}
	if f.ToMs > 0 && fill.TimeMs >= f.ToMs {
		return false
	}
	if f.Coin != "" && fill.Coin != f.Coin {
		return false
	}
	if f.BuilderOnly && taint != model.TaintClean {
		return false
	}
	return true
}

// Summary 聚合中间结果，ReturnPct 由上层结合权益基线补算
type Summary struct {
	RealizedPnl float64
	FeesPaid    float64
	Volume      float64
	TradeCount  int
	Taint       model.Taint
}

// Aggregate 归并成交流，taints 与 fills 一一对应
// 汇总层的污染优先级与周期层相反：只要有一笔 Unknown 整体就是 Unknown，
// 因为缺数据意味着结果本身不可信，比确定的污染更需要醒目
func Aggregate(fills []model.AttributedFill, taints []model.Taint, filter Filter) Summary {
	s := Summary{Taint: model.TaintClean}
	sawUnknown, sawTainted := false, false

	for i := range fills {
		f := &fills[i].Fill
		t := model.TaintUnknown
		if i < len(taints) {
			t = taints[i]
		}
		if !filter.Keep(f, t) {
			continue
		}
		s.RealizedPnl += f.ClosedPnl
		s.FeesPaid += f.Fee
		s.Volume += f.Notional()
		s.TradeCount++
		switch t {
		case model.TaintUnknown:
			sawUnknown = true
		case model.Tainted:
			sawTainted = true
		}
	}

	switch {
	case sawUnknown:
		s.Taint = model.TaintUnknown
	case sawTainted:
		s.Taint = model.Tainted
	}
	return s
}

// ReturnPct 收益率 = 已实现盈亏 / 起始资金基线
// 基线取窗口起点权益，maxStartCapital 非空时对基线封顶，
// 防止大户用巨额本金稀释收益率参与排名
func ReturnPct(realizedPnl, startEquity float64, maxStartCapital *float64) *float64 {
	base := startEquity
	if maxStartCapital != nil && *maxStartCapital > 0 {
		base = math.Min(base, *maxStartCapital)
	}
	if base <= 0 {
		return nil
	}
	pct := realizedPnl / base
	return &pct
}
