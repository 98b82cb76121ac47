package builder

import (
	"testing"

	"builderboard/internal/model"
)

const testUser = "0x1111111111111111111111111111111111111111"

func userFill(coin string, isBuy bool, px, sz float64, timeMs int64) model.Fill {
	return model.Fill{User: testUser, Coin: coin, IsBuy: isBuy, Px: px, Sz: sz, TimeMs: timeMs}
}

func builderFill(coin string, isBuy bool, px, sz float64, timeMs int64) model.BuilderFill {
	return model.BuilderFill{User: testUser, Coin: coin, IsBuy: isBuy, Px: px, Sz: sz, TimeMs: timeMs}
}

func TestMatchEmptyPoolAllUnknown(t *testing.T) {
	m := NewMatcher(nil, 1000)
	out := m.Match([]model.Fill{
		userFill("BTC", true, 90000, 1, 1000),
		userFill("ETH", false, 3000, 2, 2000),
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 attributed fills, got %d", len(out))
	}
	for i, af := range out {
		if af.Attribution != model.AttributionUnknown {
			t.Errorf("fill %d: expected Unknown, got %s", i, af.Attribution)
		}
	}
}

func TestMatchExactFieldsWithinWindow(t *testing.T) {
	m := NewMatcher([]model.BuilderFill{
		builderFill("BTC", true, 90000, 1, 1500),
	}, 1000)
	out := m.Match([]model.Fill{
		userFill("BTC", true, 90000, 1, 1000),  // 500ms 差，命中
		userFill("BTC", true, 90000, 2, 1000),  // 数量不同
		userFill("BTC", false, 90000, 1, 1000), // 方向不同
		userFill("ETH", true, 90000, 1, 1000),  // 币种不同
	})
	want := []model.Attribution{model.Attributed, model.NotAttributed, model.NotAttributed, model.NotAttributed}
	for i, af := range out {
		if af.Attribution != want[i] {
			t.Errorf("fill %d: expected %s, got %s", i, want[i], af.Attribution)
		}
	}
}

func TestMatchWindowBoundary(t *testing.T) {
	m := NewMatcher([]model.BuilderFill{
		builderFill("BTC", true, 90000, 1, 0),
		builderFill("BTC", true, 90000, 1, 10000),
	}, 1000)
	out := m.Match([]model.Fill{
		userFill("BTC", true, 90000, 1, 1000), // 正好 1000ms，含边界
		userFill("BTC", true, 90000, 1, 8999), // 1001ms，出界
	})
	if out[0].Attribution != model.Attributed {
		t.Errorf("1000ms delta should match, got %s", out[0].Attribution)
	}
	if out[1].Attribution != model.NotAttributed {
		t.Errorf("1001ms delta should not match, got %s", out[1].Attribution)
	}
}

func TestMatchConsumeOnce(t *testing.T) {
	// 一笔builder成交只能核销一笔用户成交
	m := NewMatcher([]model.BuilderFill{
		builderFill("BTC", true, 90000, 1, 1000),
	}, 1000)
	out := m.Match([]model.Fill{
		userFill("BTC", true, 90000, 1, 1000),
		userFill("BTC", true, 90000, 1, 1100),
	})
	if out[0].Attribution != model.Attributed {
		t.Errorf("first fill should consume the candidate, got %s", out[0].Attribution)
	}
	if out[1].Attribution != model.NotAttributed {
		t.Errorf("candidate already consumed, got %s", out[1].Attribution)
	}
}

func TestMatchSmallestDeltaWins(t *testing.T) {
	m := NewMatcher([]model.BuilderFill{
		builderFill("BTC", true, 90000, 1, 200),
		builderFill("BTC", true, 90000, 1, 990),
	}, 1000)
	out := m.Match([]model.Fill{
		userFill("BTC", true, 90000, 1, 1000), // 离 990 更近
		userFill("BTC", true, 90000, 1, 400),  // 只剩 200 可用
	})
	if out[0].Attribution != model.Attributed || out[1].Attribution != model.Attributed {
		t.Fatalf("both fills should match: %s / %s", out[0].Attribution, out[1].Attribution)
	}
}

func TestMatchDeltaTieBreakByInsertionOrder(t *testing.T) {
	// 两个候选与用户成交的时间差相同，取先插入的那个
	m := NewMatcher([]model.BuilderFill{
		builderFill("BTC", true, 90000, 1, 900),
		builderFill("BTC", true, 90000, 1, 1100),
	}, 1000)
	out := m.Match([]model.Fill{
		userFill("BTC", true, 90000, 1, 1000),
		userFill("BTC", true, 90000, 1, 1100),
	})
	if out[0].Attribution != model.Attributed {
		t.Fatalf("expected first fill matched, got %s", out[0].Attribution)
	}
	// 第一笔消费了 900，第二笔还能拿到 1100
	if out[1].Attribution != model.Attributed {
		t.Errorf("expected second fill matched against remaining candidate, got %s", out[1].Attribution)
	}
}

func TestMatchDifferentUserNeverMatches(t *testing.T) {
	bf := builderFill("BTC", true, 90000, 1, 1000)
	bf.User = "0x2222222222222222222222222222222222222222"
	m := NewMatcher([]model.BuilderFill{bf}, 1000)
	out := m.Match([]model.Fill{userFill("BTC", true, 90000, 1, 1000)})
	if out[0].Attribution != model.NotAttributed {
		t.Errorf("expected NotAttributed for foreign candidate, got %s", out[0].Attribution)
	}
}
