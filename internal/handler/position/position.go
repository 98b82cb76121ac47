package position

import (
	"github.com/gin-gonic/gin"

	"builderboard/internal/model"
	"builderboard/internal/service"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
	"builderboard/pkg/response"
)

type Handler struct {
	service *service.PositionService
}

func NewHandler(service *service.PositionService) *Handler {
	return &Handler{service: service}
}

// HistoryGet 持仓重建时间线，coin为空时返回跨币种合成线
func (h *Handler) HistoryGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.PositionHistoryReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "%s", err.Error()), nil)
			return
		}
		// fromMs/toMs 都可省略，省略即不限边界
		if req.ToMs != 0 && req.ToMs <= req.FromMs {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "toMs必须大于fromMs"), nil)
			return
		}

		res, err := h.service.History(ctx, &req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// CurrentGet 当前持仓精简视图
func (h *Handler) CurrentGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.CurrentPositionsReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "%s", err.Error()), nil)
			return
		}

		res, err := h.service.Current(ctx, &req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// CurrentFullGet 当前持仓完整快照
func (h *Handler) CurrentFullGet() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.CurrentPositionsReq
		if err := ctx.ShouldBindQuery(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "%s", err.Error()), nil)
			return
		}

		res, err := h.service.CurrentFull(ctx, &req)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}
