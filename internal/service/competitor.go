package service

import (
	"context"
	"strings"

	"builderboard/internal/dao"
	"builderboard/internal/model"
	"builderboard/internal/model/entity"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
)

type CompetitorService struct {
	dao dao.CompetitorDao
}

func NewCompetitorService(competitorDao dao.CompetitorDao) *CompetitorService {
	return &CompetitorService{dao: competitorDao}
}

func (s *CompetitorService) Add(ctx context.Context, req *model.CompetitorAddReq) error {
	address := strings.ToLower(req.Address)
	existing, err := s.dao.CompetitorGetByAddress(ctx, address)
	if err != nil {
		return errors.Wrap(err, ecode.Unknown, "query competitor failed")
	}
	if existing.Id != 0 {
		return errors.WithCode(ecode.ValidateErr, "competitor already registered")
	}
	return s.dao.CompetitorCreate(ctx, &entity.Competitor{
		Address:  address,
		Nickname: req.Nickname,
		Status:   1,
	})
}

type CompetitorListRes struct {
	Total int64               `json:"total"`
	List  []entity.Competitor `json:"list"`
}

func (s *CompetitorService) List(ctx context.Context) (*CompetitorListRes, error) {
	list, err := s.dao.CompetitorListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, ecode.Unknown, "list competitors failed")
	}
	return &CompetitorListRes{Total: int64(len(list)), List: list}, nil
}

func (s *CompetitorService) Remove(ctx context.Context, address string) error {
	existing, err := s.dao.CompetitorGetByAddress(ctx, address)
	if err != nil {
		return errors.Wrap(err, ecode.Unknown, "query competitor failed")
	}
	if existing.Id == 0 || existing.Status == 0 {
		return errors.WithCode(ecode.NotFoundErr, "competitor not found")
	}
	return s.dao.CompetitorDeactivate(ctx, address)
}
