package leaderboard

import (
	"github.com/gin-gonic/gin"

	"builderboard/internal/model"
	"builderboard/internal/service"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
	"builderboard/pkg/response"
)

type Handler struct {
	service *service.LeaderboardService
}

func NewHandler(service *service.LeaderboardService) *Handler {
	return &Handler{service: service}
}

// LeaderboardPost 多用户排行榜，用户集在请求体里传，为空时取参赛选手表
func (h *Handler) LeaderboardPost() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.LeaderboardReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "%s", err.Error()), nil)
			return
		}
		if req.Metric != "" && !req.Metric.Valid() {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "metric必须是pnl/volume/returnPct之一"), nil)
			return
		}

		res, err := h.service.Leaderboard(ctx, &req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
