package service

import (
	"context"
	"strings"

	"builderboard/internal/builder"
	"builderboard/internal/model"
	"builderboard/pkg/hype/rest"
	"builderboard/pkg/hype/types"
)

// DataSource 核心计算对上游数据的唯一依赖面
// builder数据不可得不是致命错误，调用方拿到 available=false 后降级 Unknown
type DataSource interface {
	// UserFills [fromMs, toMs) 窗口内的全部成交，按 (time, tid) 升序
	UserFills(ctx context.Context, user string, fromMs, toMs int64) ([]model.Fill, error)
	// UserEquity 当前账户权益
	UserEquity(ctx context.Context, user string) (float64, error)
	// UserEquityAt 指定时刻的账户权益，历史不可得时 ok=false
	UserEquityAt(ctx context.Context, user string, timeMs int64) (float64, bool, error)
	// BuilderFills 窗口内该用户经由builder的成交，available=false 表示全程无数据
	BuilderFills(ctx context.Context, user string, fromMs, toMs int64) ([]model.BuilderFill, bool, error)
	// UserAccountSummary 当前永续账户快照：持仓、保证金、可提余额
	UserAccountSummary(ctx context.Context, user string) (types.MarginData, error)
}

type hypeDataSource struct {
	client *rest.HyperliquidRestClient
	csv    *builder.CsvSource
}

func NewHypeDataSource(client *rest.HyperliquidRestClient, csv *builder.CsvSource) DataSource {
	return &hypeDataSource{client: client, csv: csv}
}

func (s *hypeDataSource) UserFills(ctx context.Context, user string, fromMs, toMs int64) ([]model.Fill, error) {
	user = strings.ToLower(user)
	orders, err := s.client.UserFillsByWindow(ctx, user, fromMs, toMs)
	if err != nil {
		return nil, err
	}
	fills := make([]model.Fill, 0, len(orders))
	for i, o := range orders {
		fills = append(fills, model.FillFromOrder(user, i, o))
	}
	return fills, nil
}

func (s *hypeDataSource) UserEquity(ctx context.Context, user string) (float64, error) {
	return s.client.AccountValue(ctx, strings.ToLower(user))
}

func (s *hypeDataSource) UserEquityAt(ctx context.Context, user string, timeMs int64) (float64, bool, error) {
	return s.client.AccountValueAt(ctx, strings.ToLower(user), timeMs)
}

func (s *hypeDataSource) BuilderFills(ctx context.Context, user string, fromMs, toMs int64) ([]model.BuilderFill, bool, error) {
	return s.csv.FillsForRange(ctx, user, fromMs, toMs)
}

func (s *hypeDataSource) UserAccountSummary(ctx context.Context, user string) (types.MarginData, error) {
	return s.client.PerpetualsAccountSummary(ctx, strings.ToLower(user))
}
