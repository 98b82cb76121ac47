package service

import (
	"context"

	"builderboard/internal/model"
	"builderboard/internal/position"
)

type TradeService struct {
	pipeline fillPipeline
}

func NewTradeService(ds DataSource, matchWindowMs int64) *TradeService {
	return &TradeService{pipeline: fillPipeline{ds: ds, windowMs: matchWindowMs}}
}

type TradeListRes struct {
	Total int64         `json:"total"`
	List  []model.Trade `json:"list"`
}

// Trades 带归因标记的成交列表
// builderOnly 按所属生命周期的污染过滤，而不是按单笔归因：
// 同周期里只要混过一笔非builder成交，整个周期的成交都不算干净
func (t *TradeService) Trades(ctx context.Context, req *model.TradesReq) (*TradeListRes, error) {
	attributed, err := t.pipeline.fetchAttributed(ctx, req.User, req.FromMs, req.ToMs)
	if err != nil {
		return nil, err
	}

	var taints []model.Taint
	if req.BuilderOnly {
		res, err := position.ReplayAll(attributed)
		if err != nil {
			return nil, err
		}
		taints = res.FillTaints
	}

	list := make([]model.Trade, 0, len(attributed))
	for i, af := range attributed {
		if req.Coin != "" && af.Coin != req.Coin {
			continue
		}
		if req.BuilderOnly && taints[i] != model.TaintClean {
			continue
		}
		list = append(list, model.TradeFromFill(af))
	}
	return &TradeListRes{Total: int64(len(list)), List: list}, nil
}
