package query

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"builderboard/internal/model/entity"
)

type competitorDao struct {
	db *gorm.DB
}

func NewCompetitorDao(db *gorm.DB) *competitorDao {
	return &competitorDao{db: db}
}

func (c *competitorDao) CompetitorCreate(ctx context.Context, competitor *entity.Competitor) error {
	competitor.Address = strings.ToLower(competitor.Address)
	return c.db.WithContext(ctx).Create(competitor).Error
}

func (c *competitorDao) CompetitorGetByAddress(ctx context.Context, address string) (res entity.Competitor, err error) {
	err = c.db.WithContext(ctx).Where("address = ?", strings.ToLower(address)).Find(&res).Error
	return
}

func (c *competitorDao) CompetitorListActive(ctx context.Context) ([]entity.Competitor, error) {
	var arr []entity.Competitor
	err := c.db.WithContext(ctx).
		Where("status = ?", 1).
		Order("id").
		Find(&arr).
		Error
	return arr, err
}

func (c *competitorDao) CompetitorDeactivate(ctx context.Context, address string) error {
	return c.db.WithContext(ctx).Model(&entity.Competitor{}).
		Where("address = ?", strings.ToLower(address)).
		Update("status", 0).
		Error
}
