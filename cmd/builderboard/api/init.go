package api

import (
	"gorm.io/gorm"

	"builderboard/conf"
	"builderboard/internal/builder"
	"builderboard/internal/dao/query"
	"builderboard/internal/handler/competitor"
	"builderboard/internal/handler/leaderboard"
	"builderboard/internal/handler/pnl"
	"builderboard/internal/handler/position"
	"builderboard/internal/handler/trade"
	"builderboard/internal/router"
	"builderboard/internal/service"
	"builderboard/pkg/cache"
	"builderboard/pkg/hype/rest"
	"builderboard/pkg/logger"
	"builderboard/pkg/mq"
)

func InitRouter(db *gorm.DB) Router {
	appCfg := conf.AppConfig

	restClient, err := rest.NewHyperliquidRestClient(
		appCfg.Hyperliquid.ApiURL,
		appCfg.Hyperliquid.StatsURL,
		appCfg.Hyperliquid.Timeout,
		appCfg.Hyperliquid.MaxRetries,
	)
	if err != nil {
		logger.Fatalf("init hyperliquid client failed: %v", err)
	}

	csvSource, err := builder.NewCsvSource(restClient, appCfg.Builder.Address, appCfg.Builder.CsvCacheSize)
	if err != nil {
		logger.Fatalf("init builder csv source failed: %v", err)
	}

	ds := service.NewHypeDataSource(restClient, csvSource)
	rc := cache.GetRedisClient()

	var producer mq.ProducerService = mq.NopProducer{}
	if appCfg.Kafka.Broker != "" {
		producer = mq.NewKafkaProducer(appCfg.Kafka.Broker)
	}

	windowMs := appCfg.Builder.MatchWindowMs
	tradeSvc := service.NewTradeService(ds, windowMs)
	positionSvc := service.NewPositionService(ds, rc, windowMs)
	pnlSvc := service.NewPnlService(ds, rc, windowMs)

	competitorDao := query.NewCompetitorDao(db)
	leaderboardSvc := service.NewLeaderboardService(pnlSvc, competitorDao, rc, producer, appCfg.Builder.Concurrency)
	competitorSvc := service.NewCompetitorService(competitorDao)

	return router.NewApiRouter(
		trade.NewHandler(tradeSvc),
		position.NewHandler(positionSvc),
		pnl.NewHandler(pnlSvc),
		leaderboard.NewHandler(leaderboardSvc),
		competitor.NewHandler(competitorSvc),
	)
}
