package service

import (
	"context"
	"testing"

	"builderboard/internal/model"
	"builderboard/internal/model/entity"
	"builderboard/pkg/hype/types"
)

const (
	userA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	userB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// fakeDataSource 内存假数据源，按用户预置成交和权益
type fakeDataSource struct {
	fills        map[string][]model.Fill
	builderFills []model.BuilderFill
	available    bool
	equity       map[string]float64
	equityAt     map[string]float64
	equityAtOk   bool
	equityErr    error
	summary      types.MarginData
}

func (f *fakeDataSource) UserFills(ctx context.Context, user string, fromMs, toMs int64) ([]model.Fill, error) {
	var out []model.Fill
	for _, fl := range f.fills[user] {
		if fl.TimeMs >= fromMs && fl.TimeMs < toMs {
			out = append(out, fl)
		}
	}
	return out, nil
}

func (f *fakeDataSource) UserEquity(ctx context.Context, user string) (float64, error) {
	if f.equityErr != nil {
		return 0, f.equityErr
	}
	return f.equity[user], nil
}

func (f *fakeDataSource) UserEquityAt(ctx context.Context, user string, timeMs int64) (float64, bool, error) {
	if f.equityErr != nil {
		return 0, false, f.equityErr
	}
	if !f.equityAtOk {
		return 0, false, nil
	}
	return f.equityAt[user], true, nil
}

func (f *fakeDataSource) BuilderFills(ctx context.Context, user string, fromMs, toMs int64) ([]model.BuilderFill, bool, error) {
	if !f.available {
		return nil, false, nil
	}
	var out []model.BuilderFill
	for _, bf := range f.builderFills {
		if bf.User == user && bf.TimeMs >= fromMs && bf.TimeMs <= toMs {
			out = append(out, bf)
		}
	}
	return out, true, nil
}

func (f *fakeDataSource) UserAccountSummary(ctx context.Context, user string) (types.MarginData, error) {
	return f.summary, nil
}

func mkFill(user, coin string, isBuy bool, px, sz float64, timeMs int64) model.Fill {
	return model.Fill{User: user, Coin: coin, IsBuy: isBuy, Px: px, Sz: sz, TimeMs: timeMs}
}

func mkBuilderFill(user, coin string, isBuy bool, px, sz float64, timeMs int64) model.BuilderFill {
	return model.BuilderFill{User: user, Coin: coin, IsBuy: isBuy, Px: px, Sz: sz, TimeMs: timeMs}
}

func TestTradeServiceUnknownWhenNoBuilderData(t *testing.T) {
	ds := &fakeDataSource{
		fills: map[string][]model.Fill{
			userA: {
				mkFill(userA, "BTC", true, 100, 1, 1000),
				mkFill(userA, "BTC", false, 110, 1, 2000),
			},
		},
		available: false,
	}
	svc := NewTradeService(ds, 1000)
	res, err := svc.Trades(context.Background(), &model.TradesReq{User: userA, FromMs: 0, ToMs: 10000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 trades, got %d", res.Total)
	}
	for _, tr := range res.List {
		if tr.Attribution != model.AttributionUnknown.String() {
			t.Errorf("expected Unknown attribution, got %s", tr.Attribution)
		}
	}
}

func TestTradeServiceBuilderOnlyDropsTaintedLifecycle(t *testing.T) {
	ds := &fakeDataSource{
		fills: map[string][]model.Fill{
			userA: {
				// 干净周期
				mkFill(userA, "BTC", true, 100, 1, 1000),
				mkFill(userA, "BTC", false, 110, 1, 2000),
				// 混入一笔非builder成交的周期
				mkFill(userA, "BTC", true, 120, 1, 3000),
				mkFill(userA, "BTC", false, 130, 1, 4000),
			},
		},
		builderFills: []model.BuilderFill{
			mkBuilderFill(userA, "BTC", true, 100, 1, 1000),
			mkBuilderFill(userA, "BTC", false, 110, 1, 2000),
			mkBuilderFill(userA, "BTC", false, 130, 1, 4000),
		},
		available: true,
	}
	svc := NewTradeService(ds, 1000)
	res, err := svc.Trades(context.Background(), &model.TradesReq{User: userA, FromMs: 0, ToMs: 10000, BuilderOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	// 第二个周期的开仓没有builder对应，整周期两笔都被剔除
	if res.Total != 2 {
		t.Fatalf("expected 2 clean trades, got %d: %+v", res.Total, res.List)
	}
	for _, tr := range res.List {
		if tr.Px != 100 && tr.Px != 110 {
			t.Errorf("tainted lifecycle trade leaked through: %+v", tr)
		}
	}
}

func TestPositionServiceSingleCoinHistory(t *testing.T) {
	ds := &fakeDataSource{
		fills: map[string][]model.Fill{
			userA: {
				mkFill(userA, "BTC", true, 100, 2, 1000),
				mkFill(userA, "ETH", true, 10, 5, 1500),
				mkFill(userA, "BTC", false, 110, 2, 2000),
			},
		},
		available: false,
	}
	svc := NewPositionService(ds, nil, 1000)
	res, err := svc.History(context.Background(), &model.PositionHistoryReq{User: userA, Coin: "BTC", FromMs: 0, ToMs: 10000})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.States) != 2 {
		t.Fatalf("expected 2 BTC states, got %d", len(res.States))
	}
	if res.States[1].RealizedPnl != 20 {
		t.Errorf("expected pnl 20, got %v", res.States[1].RealizedPnl)
	}
	if res.States[0].Taint != model.TaintUnknown {
		t.Errorf("no builder data must yield Unknown, got %s", res.States[0].Taint)
	}
}

func TestPositionServiceCurrentSimpleView(t *testing.T) {
	ds := &fakeDataSource{
		summary: types.MarginData{
			AssetPositions: []types.AssetPosition{
				{
					Type: "oneWay",
					Position: types.Position{
						Coin:          "BTC",
						Szi:           "1.5",
						EntryPx:       "100.0",
						LiquidationPx: "50.0",
						MarginUsed:    "30.0",
						UnrealizedPnl: "12.5",
						Leverage:      types.Leverage{Type: "cross", Value: 5},
					},
				},
			},
			MarginSummary: types.MarginSummary{AccountValue: "1000.0", TotalMarginUsed: "30.0"},
			Withdrawable:  "970.0",
			Time:          5000,
		},
	}
	svc := NewPositionService(ds, nil, 1000)
	res, err := svc.Current(context.Background(), &model.CurrentPositionsReq{User: userA})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(res.Positions))
	}
	p := res.Positions[0]
	if p.Coin != "BTC" || p.Szi != "1.5" || p.LiqPx != "50.0" || p.Leverage != 5 {
		t.Errorf("unexpected position mapping: %+v", p)
	}
	if res.MarginSummary.AccountValue != "1000.0" || res.MarginSummary.Withdrawable != "970.0" {
		t.Errorf("unexpected margin summary: %+v", res.MarginSummary)
	}
	if res.TimeMs != 5000 {
		t.Errorf("expected time 5000, got %d", res.TimeMs)
	}
}

func TestTradeServiceOmittedWindowQueriesAll(t *testing.T) {
	ds := &fakeDataSource{
		fills: map[string][]model.Fill{
			userA: {
				mkFill(userA, "BTC", true, 100, 1, 1000),
				mkFill(userA, "BTC", false, 110, 1, 2000),
			},
		},
		builderFills: []model.BuilderFill{
			mkBuilderFill(userA, "BTC", true, 100, 1, 1000),
		},
		available: true,
	}
	svc := NewTradeService(ds, 1000)
	// 不给时间窗口即查全量
	res, err := svc.Trades(context.Background(), &model.TradesReq{User: userA})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 trades, got %d", res.Total)
	}
	if res.List[0].Attribution != model.Attributed.String() {
		t.Errorf("expected Attributed, got %s", res.List[0].Attribution)
	}
	if res.List[1].Attribution != model.NotAttributed.String() {
		t.Errorf("expected NotAttributed, got %s", res.List[1].Attribution)
	}
}

func TestPnlServiceComputes(t *testing.T) {
	ds := &fakeDataSource{
		fills: map[string][]model.Fill{
			userA: {
				mkFill(userA, "BTC", true, 100, 2, 1000),
				fillWithPnl(userA, "BTC", false, 110, 2, 2000, 20, 0.5),
			},
		},
		available: true,
		builderFills: []model.BuilderFill{
			mkBuilderFill(userA, "BTC", true, 100, 2, 1000),
			mkBuilderFill(userA, "BTC", false, 110, 2, 2000),
		},
		equityAt:   map[string]float64{userA: 1000},
		equityAtOk: true,
	}
	svc := NewPnlService(ds, nil, 1000)
	res, err := svc.Pnl(context.Background(), &model.PnlReq{User: userA, FromMs: 0, ToMs: 10000})
	if err != nil {
		t.Fatal(err)
	}
	if res.RealizedPnl != 20 || res.TradeCount != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Volume != 100*2+110*2 {
		t.Errorf("unexpected volume: %v", res.Volume)
	}
	if res.FeesPaid != 0.5 {
		t.Errorf("unexpected fees: %v", res.FeesPaid)
	}
	if res.Taint != model.TaintClean {
		t.Errorf("expected Clean, got %s", res.Taint)
	}
	if res.ReturnPct == nil || *res.ReturnPct != 0.02 {
		t.Errorf("expected returnPct 0.02, got %v", res.ReturnPct)
	}
}

func fillWithPnl(user, coin string, isBuy bool, px, sz float64, timeMs int64, closedPnl, fee float64) model.Fill {
	f := mkFill(user, coin, isBuy, px, sz, timeMs)
	f.ClosedPnl = closedPnl
	f.Fee = fee
	return f
}

func TestPnlServiceEquityFallback(t *testing.T) {
	ds := &fakeDataSource{
		fills: map[string][]model.Fill{
			userA: {fillWithPnl(userA, "BTC", false, 110, 1, 2000, 10, 0)},
		},
		available:  false,
		equityAtOk: false,
		equity:     map[string]float64{userA: 500},
	}
	svc := NewPnlService(ds, nil, 1000)
	res, err := svc.Pnl(context.Background(), &model.PnlReq{User: userA, FromMs: 0, ToMs: 10000})
	if err != nil {
		t.Fatal(err)
	}
	// 历史权益拿不到时退回当前权益
	if res.ReturnPct == nil || *res.ReturnPct != 10.0/500 {
		t.Errorf("expected fallback returnPct 0.02, got %v", res.ReturnPct)
	}
	if res.Taint != model.TaintUnknown {
		t.Errorf("expected Unknown taint, got %s", res.Taint)
	}
}

// fakeCompetitorDao 内存登记表
type fakeCompetitorDao struct {
	items []entity.Competitor
}

func (f *fakeCompetitorDao) CompetitorCreate(ctx context.Context, c *entity.Competitor) error {
	c.Id = int64(len(f.items) + 1)
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCompetitorDao) CompetitorGetByAddress(ctx context.Context, address string) (entity.Competitor, error) {
	for _, c := range f.items {
		if c.Address == address {
			return c, nil
		}
	}
	return entity.Competitor{}, nil
}

func (f *fakeCompetitorDao) CompetitorListActive(ctx context.Context) ([]entity.Competitor, error) {
	var out []entity.Competitor
	for _, c := range f.items {
		if c.Status == 1 {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCompetitorDao) CompetitorDeactivate(ctx context.Context, address string) error {
	for i := range f.items {
		if f.items[i].Address == address {
			f.items[i].Status = 0
		}
	}
	return nil
}

func TestLeaderboardServiceRanksUsers(t *testing.T) {
	ds := &fakeDataSource{
		fills: map[string][]model.Fill{
			userA: {fillWithPnl(userA, "BTC", false, 110, 1, 2000, 10, 0)},
			userB: {fillWithPnl(userB, "BTC", false, 110, 1, 2500, 30, 0)},
		},
		available: true,
		builderFills: []model.BuilderFill{
			mkBuilderFill(userA, "BTC", false, 110, 1, 2000),
			mkBuilderFill(userB, "BTC", false, 110, 1, 2500),
		},
		equityAt:   map[string]float64{userA: 100, userB: 100},
		equityAtOk: true,
	}
	pnlSvc := NewPnlService(ds, nil, 1000)
	svc := NewLeaderboardService(pnlSvc, &fakeCompetitorDao{}, nil, nil, 4)

	res, err := svc.Leaderboard(context.Background(), &model.LeaderboardReq{
		Users:  []string{userA, userB},
		FromMs: 1,
		ToMs:   10000,
		Metric: model.MetricPnl,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 2 {
		t.Fatalf("expected 2 entries, got %d", res.Total)
	}
	if res.List[0].User != userB || res.List[0].Rank != 1 {
		t.Errorf("expected userB first: %+v", res.List)
	}
	if res.List[1].User != userA || res.List[1].Rank != 2 {
		t.Errorf("expected userA second: %+v", res.List)
	}
}

func TestLeaderboardServiceBuilderOnlyExclusion(t *testing.T) {
	// userB 指标更高但没有builder归因，builderOnly 下被整行剔除
	ds := &fakeDataSource{
		fills: map[string][]model.Fill{
			userA: {mkFill(userA, "BTC", true, 100, 1, 2000)},
			userB: {mkFill(userB, "BTC", true, 100, 1, 2500)},
		},
		available: true,
		builderFills: []model.BuilderFill{
			mkBuilderFill(userA, "BTC", true, 100, 1, 2000),
		},
		equityAt:   map[string]float64{userA: 100, userB: 100},
		equityAtOk: true,
	}
	pnlSvc := NewPnlService(ds, nil, 1000)
	svc := NewLeaderboardService(pnlSvc, &fakeCompetitorDao{}, nil, nil, 4)

	res, err := svc.Leaderboard(context.Background(), &model.LeaderboardReq{
		Users:       []string{userA, userB},
		FromMs:      1,
		ToMs:        10000,
		Metric:      model.MetricPnl,
		BuilderOnly: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.List[0].User != userA {
		t.Fatalf("expected only userA to survive: %+v", res.List)
	}
}

func TestLeaderboardServiceDefaultsToCompetitors(t *testing.T) {
	ds := &fakeDataSource{
		fills:      map[string][]model.Fill{userA: {fillWithPnl(userA, "BTC", false, 110, 1, 2000, 5, 0)}},
		available:  false,
		equityAt:   map[string]float64{userA: 100},
		equityAtOk: true,
	}
	competitors := &fakeCompetitorDao{items: []entity.Competitor{
		{Id: 1, Address: userA, Status: 1},
		{Id: 2, Address: userB, Status: 0}, // 已退赛
	}}
	pnlSvc := NewPnlService(ds, nil, 1000)
	svc := NewLeaderboardService(pnlSvc, competitors, nil, nil, 4)

	res, err := svc.Leaderboard(context.Background(), &model.LeaderboardReq{FromMs: 1, ToMs: 10000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Total != 1 || res.List[0].User != userA {
		t.Fatalf("expected only active competitor: %+v", res.List)
	}
}

func TestCompetitorServiceLifecycle(t *testing.T) {
	svc := NewCompetitorService(&fakeCompetitorDao{})
	ctx := context.Background()

	if err := svc.Add(ctx, &model.CompetitorAddReq{Address: userA, Nickname: "alpha"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(ctx, &model.CompetitorAddReq{Address: userA}); err == nil {
		t.Fatal("duplicate registration must fail")
	}
	list, err := svc.List(ctx)
	if err != nil || list.Total != 1 {
		t.Fatalf("expected 1 competitor: %v %+v", err, list)
	}
	if err := svc.Remove(ctx, userA); err != nil {
		t.Fatal(err)
	}
	list, _ = svc.List(ctx)
	if list.Total != 0 {
		t.Fatalf("expected empty list after removal, got %d", list.Total)
	}
}
