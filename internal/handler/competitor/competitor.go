package competitor

import (
	"github.com/gin-gonic/gin"

	"builderboard/internal/model"
	"builderboard/internal/service"
	"builderboard/pkg/errors"
	"builderboard/pkg/errors/ecode"
	"builderboard/pkg/response"
	"builderboard/pkg/validator"
)

type Handler struct {
	service *service.CompetitorService
}

func NewHandler(service *service.CompetitorService) *Handler {
	return &Handler{service: service}
}

// CompetitorAdd 登记参赛选手
func (h *Handler) CompetitorAdd() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.CompetitorAddReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "%s", err.Error()), nil)
			return
		}

		if err := h.service.Add(ctx, &req); err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, nil)
	}
}

// CompetitorList 参赛中的选手列表
func (h *Handler) CompetitorList() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res, err := h.service.List(ctx)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, res)
	}
}

// CompetitorRemove 退赛，地址在路径参数里
func (h *Handler) CompetitorRemove() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		address := ctx.Param("address")
		if !validator.IsWalletAddress(address) {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "钱包地址格式错误"), nil)
			return
		}

		if err := h.service.Remove(ctx, address); err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, nil)
	}
}
