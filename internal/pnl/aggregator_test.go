package pnl

import (
	"math"
	"testing"

	"builderboard/internal/model"
)

func afill(coin string, px, sz, fee, closedPnl float64, timeMs int64) model.AttributedFill {
	return model.AttributedFill{
		Fill: model.Fill{User: "0x1", Coin: coin, Px: px, Sz: sz, Fee: fee, ClosedPnl: closedPnl, TimeMs: timeMs},
	}
}

func TestAggregateBasic(t *testing.T) {
	fills := []model.AttributedFill{
		afill("BTC", 100, 2, 0.1, 0, 1000),
		afill("BTC", 110, 2, 0.2, 20, 2000),
	}
	taints := []model.Taint{model.TaintClean, model.TaintClean}

	s := Aggregate(fills, taints, Filter{FromMs: 0, ToMs: 3000})
	if s.TradeCount != 2 {
		t.Fatalf("expected 2 trades, got %d", s.TradeCount)
	}
	if s.Volume != 100*2+110*2 {
		t.Errorf("unexpected volume %v", s.Volume)
	}
	if math.Abs(s.RealizedPnl-20) > 1e-9 || math.Abs(s.FeesPaid-0.3) > 1e-9 {
		t.Errorf("unexpected pnl %v fees %v", s.RealizedPnl, s.FeesPaid)
	}
	if s.Taint != model.TaintClean {
		t.Errorf("expected Clean, got %s", s.Taint)
	}
}

func TestAggregateHalfOpenWindow(t *testing.T) {
	fills := []model.AttributedFill{
		afill("BTC", 100, 1, 0, 0, 999),  // from 之前
		afill("BTC", 100, 1, 0, 0, 1000), // 含下界
		afill("BTC", 100, 1, 0, 0, 1999),
		afill("BTC", 100, 1, 0, 0, 2000), // 不含上界
	}
	taints := make([]model.Taint, len(fills))
	for i := range taints {
		taints[i] = model.TaintClean
	}
	s := Aggregate(fills, taints, Filter{FromMs: 1000, ToMs: 2000})
	if s.TradeCount != 2 {
		t.Errorf("half-open [1000,2000) should keep 2 trades, got %d", s.TradeCount)
	}
}

func TestAggregateCoinFilter(t *testing.T) {
	fills := []model.AttributedFill{
		afill("BTC", 100, 1, 0, 5, 1000),
		afill("ETH", 10, 1, 0, 7, 1100),
	}
	taints := []model.Taint{model.TaintClean, model.TaintClean}
	s := Aggregate(fills, taints, Filter{ToMs: 2000, Coin: "ETH"})
	if s.TradeCount != 1 || s.RealizedPnl != 7 {
		t.Errorf("coin filter failed: %+v", s)
	}
}

func TestAggregateBuilderOnlyExcludesNonClean(t *testing.T) {
	fills := []model.AttributedFill{
		afill("BTC", 100, 1, 1, 5, 1000),
		afill("BTC", 100, 1, 1, 100, 1100),
		afill("BTC", 100, 1, 1, 200, 1200),
	}
	taints := []model.Taint{model.TaintClean, model.Tainted, model.TaintUnknown}
	s := Aggregate(fills, taints, Filter{ToMs: 2000, BuilderOnly: true})
	if s.TradeCount != 1 {
		t.Fatalf("expected only clean trade, got %d", s.TradeCount)
	}
	if s.RealizedPnl != 5 || s.FeesPaid != 1 {
		t.Errorf("excluded trades must not contribute: %+v", s)
	}
	if s.Taint != model.TaintClean {
		t.Errorf("builderOnly result is always Clean, got %s", s.Taint)
	}
}

func TestAggregateTaintPrecedence(t *testing.T) {
	fills := []model.AttributedFill{
		afill("BTC", 100, 1, 0, 0, 1000),
		afill("BTC", 100, 1, 0, 0, 1100),
	}
	// Unknown 压过 Tainted
	s := Aggregate(fills, []model.Taint{model.Tainted, model.TaintUnknown}, Filter{ToMs: 2000})
	if s.Taint != model.TaintUnknown {
		t.Errorf("expected Unknown, got %s", s.Taint)
	}
	s = Aggregate(fills, []model.Taint{model.TaintClean, model.Tainted}, Filter{ToMs: 2000})
	if s.Taint != model.Tainted {
		t.Errorf("expected Tainted, got %s", s.Taint)
	}
}

func TestAggregateEmptyRangeIsZero(t *testing.T) {
	s := Aggregate(nil, nil, Filter{FromMs: 0, ToMs: 1000})
	if s.TradeCount != 0 || s.RealizedPnl != 0 || s.Volume != 0 {
		t.Errorf("empty input must aggregate to zero: %+v", s)
	}
	if s.Taint != model.TaintClean {
		t.Errorf("empty aggregate defaults Clean, got %s", s.Taint)
	}
}

func TestReturnPct(t *testing.T) {
	cap100 := 100.0
	if pct := ReturnPct(50, 1000, nil); pct == nil || *pct != 0.05 {
		t.Errorf("expected 0.05, got %v", pct)
	}
	// 基线封顶
	if pct := ReturnPct(50, 1000, &cap100); pct == nil || *pct != 0.5 {
		t.Errorf("expected capped 0.5, got %v", pct)
	}
	// 基线低于上限时取实际权益
	if pct := ReturnPct(5, 50, &cap100); pct == nil || *pct != 0.1 {
		t.Errorf("expected 0.1, got %v", pct)
	}
	// 权益不可得
	if pct := ReturnPct(50, 0, nil); pct != nil {
		t.Errorf("zero equity must yield nil, got %v", pct)
	}
}
