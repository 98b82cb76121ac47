package pnl

import (
	"github.com/gin-gonic/gin"

	"builderboard/internal/model"
	"builderboard/internal/service"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
	"builderboard/pkg/response"
)

type Handler struct {
	service *service.PnlService
}

func NewHandler(service *service.PnlService) *Handler {
	return &Handler{service: service}
}

// PnlGet 单用户盈亏汇总
func (h *Handler) PnlGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.PnlReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "%s", err.Error()), nil)
			return
		}
		// fromMs/toMs 都可省略，省略即不限边界
		if req.ToMs != 0 && req.ToMs <= req.FromMs {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "toMs必须大于fromMs"), nil)
			return
		}
		if req.MaxStartCapital != nil && *req.MaxStartCapital <= 0 {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "maxStartCapital必须大于0"), nil)
			return
		}

		res, err := h.service.Pnl(ctx, &req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
