package service

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"

	"builderboard/internal/consts"
	"builderboard/internal/model"
	"builderboard/internal/position"
	"builderboard/pkg/hype/types"
	"builderboard/pkg/logger"
)

type PositionService struct {
	pipeline fillPipeline
	rc       *redis.Client
}

func NewPositionService(ds DataSource, rc *redis.Client, matchWindowMs int64) *PositionService {
	return &PositionService{pipeline: fillPipeline{ds: ds, windowMs: matchWindowMs}, rc: rc}
}

type PositionHistoryRes struct {
	States     []model.PositionState     `json:"states"`
	Lifecycles []model.PositionLifecycle `json:"lifecycles"`
}

type SimplePosition struct {
	Coin          string `json:"coin"`
	Szi           string `json:"szi"`
	EntryPx       string `json:"entryPx"`
	LiqPx         string `json:"liqPx"`
	MarginUsed    string `json:"marginUsed"`
	UnrealizedPnl string `json:"unrealizedPnl"`
	Leverage      int    `json:"leverage"`
}

type SimpleMarginSummary struct {
	AccountValue    string `json:"accountValue"`
	TotalMarginUsed string `json:"totalMarginUsed"`
	Withdrawable    string `json:"withdrawable"`
}

type CurrentPositionsRes struct {
	Positions     []SimplePosition    `json:"positions"`
	MarginSummary SimpleMarginSummary `json:"marginSummary"`
	TimeMs        int64               `json:"time"`
}

// History 持仓时间线，结果短缓存
// 指定 coin 时返回单币种逐笔快照；不指定时各币种独立重建后按成交序合成一条总线
func (p *PositionService) History(ctx context.Context, req *model.PositionHistoryReq) (*PositionHistoryRes, error) {
	rdsKey := p.historyCacheKey(req)
	if p.rc != nil {
		bytes, err := p.rc.Get(ctx, rdsKey).Bytes()
		if err == nil {
			var res PositionHistoryRes
			if err = json.Unmarshal(bytes, &res); err == nil {
				return &res, nil
			}
		} else if err != redis.Nil {
			logger.Errorf("PositionService redis读取异常:%v", err.Error())
		}
	}

	res, err := p.buildHistory(ctx, req)
	if err != nil {
		return nil, err
	}

	if p.rc != nil {
		bytes, err := json.Marshal(res)
		if err == nil {
			if err = p.rc.Set(ctx, rdsKey, bytes, consts.RedisExrDefault).Err(); err != nil {
				logger.Errorf("PositionService存储Cache失败:%v", err.Error())
			}
		}
	}
	return res, nil
}

func (p *PositionService) buildHistory(ctx context.Context, req *model.PositionHistoryReq) (*PositionHistoryRes, error) {
	attributed, err := p.pipeline.fetchAttributed(ctx, req.User, req.FromMs, req.ToMs)
	if err != nil {
		return nil, err
	}

	var states []model.PositionState
	var lifecycles []model.PositionLifecycle

	if req.Coin != "" {
		coinFills := make([]model.AttributedFill, 0, len(attributed))
		for _, af := range attributed {
			if af.Coin == req.Coin {
				coinFills = append(coinFills, af)
			}
		}
		res, err := position.Replay(req.Coin, coinFills)
		if err != nil {
			return nil, err
		}
		states, lifecycles = res.States, res.Lifecycles
	} else {
		res, err := position.ReplayAll(attributed)
		if err != nil {
			return nil, err
		}
		states, lifecycles = res.States, res.Lifecycles
	}

	if req.BuilderOnly {
		states = filterCleanStates(states)
		lifecycles = filterCleanLifecycles(lifecycles)
	}
	return &PositionHistoryRes{States: states, Lifecycles: lifecycles}, nil
}

// Current 当前持仓的精简视图：清算价、占用保证金、杠杆、浮动盈亏
func (p *PositionService) Current(ctx context.Context, req *model.CurrentPositionsReq) (*CurrentPositionsRes, error) {
	summary, err := p.accountSummary(ctx, req.User)
	if err != nil {
		return nil, err
	}

	positions := make([]SimplePosition, 0, len(summary.AssetPositions))
	for _, ap := range summary.AssetPositions {
		positions = append(positions, SimplePosition{
			Coin:          ap.Position.Coin,
			Szi:           ap.Position.Szi,
			EntryPx:       ap.Position.EntryPx,
			LiqPx:         ap.Position.LiquidationPx,
			MarginUsed:    ap.Position.MarginUsed,
			UnrealizedPnl: ap.Position.UnrealizedPnl,
			Leverage:      ap.Position.Leverage.Value,
		})
	}

	return &CurrentPositionsRes{
		Positions: positions,
		MarginSummary: SimpleMarginSummary{
			AccountValue:    summary.MarginSummary.AccountValue,
			TotalMarginUsed: summary.MarginSummary.TotalMarginUsed,
			Withdrawable:    summary.Withdrawable,
		},
		TimeMs: summary.Time,
	}, nil
}

// CurrentFull 当前持仓的完整快照，原样返回交易所账户数据
func (p *PositionService) CurrentFull(ctx context.Context, req *model.CurrentPositionsReq) (*types.MarginData, error) {
	summary, err := p.accountSummary(ctx, req.User)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// accountSummary 账户快照波动快，只做秒级短缓存
func (p *PositionService) accountSummary(ctx context.Context, user string) (types.MarginData, error) {
	rdsKey := fmt.Sprintf("%s:%s", consts.AccountSummaryKey, user)
	if p.rc != nil {
		bytes, err := p.rc.Get(ctx, rdsKey).Bytes()
		if err == nil {
			var summary types.MarginData
			if err = json.Unmarshal(bytes, &summary); err == nil {
				return summary, nil
			}
		} else if err != redis.Nil {
			logger.Errorf("PositionService redis读取异常:%v", err.Error())
		}
	}

	summary, err := p.pipeline.ds.UserAccountSummary(ctx, user)
	if err != nil {
		return types.MarginData{}, err
	}

	if p.rc != nil {
		bytes, err := json.Marshal(summary)
		if err == nil {
			if err = p.rc.Set(ctx, rdsKey, bytes, consts.RedisExrEquity).Err(); err != nil {
				logger.Errorf("PositionService存储Cache失败:%v", err.Error())
			}
		}
	}
	return summary, nil
}

func (p *PositionService) historyCacheKey(req *model.PositionHistoryReq) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d:%t",
		consts.PositionHistoryKey, req.User, req.Coin, req.FromMs, req.ToMs, req.BuilderOnly)
}

func filterCleanStates(states []model.PositionState) []model.PositionState {
	out := make([]model.PositionState, 0, len(states))
	for _, s := range states {
		if s.Taint == model.TaintClean {
			out = append(out, s)
		}
	}
	return out
}

func filterCleanLifecycles(lcs []model.PositionLifecycle) []model.PositionLifecycle {
	out := make([]model.PositionLifecycle, 0, len(lcs))
	for _, lc := range lcs {
		if lc.Taint == model.TaintClean {
			out = append(out, lc)
		}
	}
	return out
}
