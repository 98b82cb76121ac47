package trade

import (
	"github.com/gin-gonic/gin"

	"builderboard/internal/model"
	"builderboard/internal/service"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
	"builderboard/pkg/response"
)

type Handler struct {
	service *service.TradeService
}

func NewHandler(service *service.TradeService) *Handler {
	return &Handler{service: service}
}

// TradesGet 用户成交列表，带builder归因标记
func (h *Handler) TradesGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.TradesReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "%s", err.Error()), nil)
			return
		}
		// fromMs/toMs 都可省略，省略即不限边界
		if req.ToMs != 0 && req.ToMs <= req.FromMs {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "toMs必须大于fromMs"), nil)
			return
		}

		res, err := h.service.Trades(ctx, &req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
