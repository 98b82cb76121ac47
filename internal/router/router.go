package router

import (
	"github.com/gin-gonic/gin"

	"builderboard/internal/handler/competitor"
	"builderboard/internal/handler/leaderboard"
	"builderboard/internal/handler/ping"
	"builderboard/internal/handler/pnl"
	"builderboard/internal/handler/position"
	"builderboard/internal/handler/trade"
	"builderboard/internal/middleware"
)

type ApiRouter struct {
	tradeHandler       *trade.Handler
	positionHandler    *position.Handler
	pnlHandler         *pnl.Handler
	leaderboardHandler *leaderboard.Handler
	competitorHandler  *competitor.Handler
}

func NewApiRouter(th *trade.Handler, posH *position.Handler, pnlH *pnl.Handler,
	lbH *leaderboard.Handler, compH *competitor.Handler) *ApiRouter {
	return &ApiRouter{
		tradeHandler:       th,
		positionHandler:    posH,
		pnlHandler:         pnlH,
		leaderboardHandler: lbH,
		competitorHandler:  compH,
	}
}

func (api *ApiRouter) Load(g *gin.Engine) {

	g.GET("/ping", ping.Ping())

	base := g.Group("/api/v1")

	base.GET("/trades", api.tradeHandler.TradesGet())

	p := base.Group("/positions")
	{
		p.GET("/history", api.positionHandler.HistoryGet())
		p.GET("/current", api.positionHandler.CurrentGet())
		p.GET("/current/full", api.positionHandler.CurrentFullGet())
	}

	base.GET("/pnl", api.pnlHandler.PnlGet())

	// 排行榜是重计算接口，加防抖
	base.POST("/leaderboard", middleware.AntiDuplicateMiddleware(), api.leaderboardHandler.LeaderboardPost())

	c := base.Group("/competitors")
	{
		c.GET("", api.competitorHandler.CompetitorList())
		c.POST("", api.competitorHandler.CompetitorAdd())
		c.DELETE("/:address", api.competitorHandler.CompetitorRemove())
	}
}
