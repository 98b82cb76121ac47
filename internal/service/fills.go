package service

import (
	"context"
	"time"

	"builderboard/internal/builder"
	"builderboard/internal/model"
	"builderboard/pkg/logger"
)

// fillPipeline 取成交、做归因的共用流水线
// 成交主数据拉取失败是致命的，builder数据拉取失败只降级为 Unknown
type fillPipeline struct {
	ds       DataSource
	windowMs int64
}

func (p *fillPipeline) fetchAttributed(ctx context.Context, user string, fromMs, toMs int64) ([]model.AttributedFill, error) {
	// toMs 省略时查到当前时刻
	if toMs <= 0 {
		toMs = time.Now().UnixMilli()
	}
	fills, err := p.ds.UserFills(ctx, user, fromMs, toMs)
	if err != nil {
		return nil, err
	}
	if err := model.ValidateFills(fills); err != nil {
		return nil, err
	}
	if len(fills) == 0 {
		return nil, nil
	}

	// builder数据按实际成交的时间跨度拉取，两侧各放宽一个撮合容差
	// 用请求窗口的话，fromMs=0 的全量查询会逐日扫到纪元起点
	lo := fills[0].TimeMs - p.windowMs
	hi := fills[len(fills)-1].TimeMs + p.windowMs
	builderFills, available, err := p.ds.BuilderFills(ctx, user, lo, hi)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("builder fills unavailable, degrading to unknown attribution",
			logger.Pair("user", user), logger.Pair("err", err.Error()))
		available = false
	}
	if !available {
		builderFills = nil
	}
	return builder.NewMatcher(builderFills, p.windowMs).Match(fills), nil
}
