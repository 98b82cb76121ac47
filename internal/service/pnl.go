package service

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	json "github.com/goccy/go-json"

	"builderboard/internal/consts"
	"builderboard/internal/model"
	"builderboard/internal/pnl"
	"builderboard/internal/position"
	"builderboard/pkg/logger"
)

type PnlService struct {
	pipeline fillPipeline
	rc       *redis.Client
}

func NewPnlService(ds DataSource, rc *redis.Client, matchWindowMs int64) *PnlService {
	return &PnlService{pipeline: fillPipeline{ds: ds, windowMs: matchWindowMs}, rc: rc}
}

// Pnl 单用户时间窗口的盈亏汇总，结果短缓存
func (s *PnlService) Pnl(ctx context.Context, req *model.PnlReq) (*model.PnLResult, error) {
	rdsKey := s.cacheKey(req)
	if s.rc != nil {
		bytes, err := s.rc.Get(ctx, rdsKey).Bytes()
		if err == nil {
			var res model.PnLResult
			if err = json.Unmarshal(bytes, &res); err == nil {
				return &res, nil
			}
		} else if err != redis.Nil {
			logger.Errorf("PnlService redis读取异常:%v", err.Error())
		}
	}

	res, err := s.compute(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.rc != nil {
		bytes, err := json.Marshal(res)
		if err == nil {
			if err = s.rc.Set(ctx, rdsKey, bytes, consts.RedisExrDefault).Err(); err != nil {
				logger.Errorf("PnlService存储Cache失败:%v", err.Error())
			}
		}
	}
	return res, nil
}

func (s *PnlService) compute(ctx context.Context, req *model.PnlReq) (*model.PnLResult, error) {
	attributed, err := s.pipeline.fetchAttributed(ctx, req.User, req.FromMs, req.ToMs)
	if err != nil {
		return nil, err
	}
	replay, err := position.ReplayAll(attributed)
	if err != nil {
		return nil, err
	}

	summary := pnl.Aggregate(attributed, replay.FillTaints, pnl.Filter{
		FromMs:      req.FromMs,
		ToMs:        req.ToMs,
		Coin:        req.Coin,
		BuilderOnly: req.BuilderOnly,
	})

	res := &model.PnLResult{
		User:        req.User,
		Coin:        req.Coin,
		FromMs:      req.FromMs,
		ToMs:        req.ToMs,
		RealizedPnl: summary.RealizedPnl,
		FeesPaid:    summary.FeesPaid,
		TradeCount:  summary.TradeCount,
		Volume:      summary.Volume,
		Taint:       summary.Taint,
	}

	equity, ok := s.startEquity(ctx, req.User, req.FromMs)
	if ok {
		res.ReturnPct = pnl.ReturnPct(summary.RealizedPnl, equity, req.MaxStartCapital)
	}
	return res, nil
}

// startEquity 窗口起点的账户权益，历史点位拿不到就退回当前权益
// 两路都失败时收益率置空，不让权益接口的故障拖垮整个盈亏请求
func (s *PnlService) startEquity(ctx context.Context, user string, fromMs int64) (float64, bool) {
	equity, ok, err := s.pipeline.ds.UserEquityAt(ctx, user, fromMs)
	if err == nil && ok {
		return equity, true
	}
	if err != nil {
		logger.Warn("historical equity lookup failed, falling back to current",
			logger.Pair("user", user), logger.Pair("err", err.Error()))
	}
	equity, err = s.pipeline.ds.UserEquity(ctx, user)
	if err != nil {
		logger.Warn("current equity lookup failed",
			logger.Pair("user", user), logger.Pair("err", err.Error()))
		return 0, false
	}
	return equity, true
}

func (s *PnlService) cacheKey(req *model.PnlReq) string {
	maxCap := float64(0)
	if req.MaxStartCapital != nil {
		maxCap = *req.MaxStartCapital
	}
	return fmt.Sprintf("%s:%s:%s:%d:%d:%t:%g",
		consts.UserPnlKey, req.User, req.Coin, req.FromMs, req.ToMs, req.BuilderOnly, maxCap)
}
