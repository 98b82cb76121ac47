package dao

import (
	"context"

	"builderboard/internal/model/entity"
)

type CompetitorDao interface {
	// 登记选手，地址已存在时返回错误
	CompetitorCreate(ctx context.Context, competitor *entity.Competitor) error
	// 按地址查询
	CompetitorGetByAddress(ctx context.Context, address string) (entity.Competitor, error)
	// 参赛中的全部选手
	CompetitorListActive(ctx context.Context) ([]entity.Competitor, error)
	// 退赛，保留记录只改状态
	CompetitorDeactivate(ctx context.Context, address string) error
}
