package main

import (
	"flag"
	"log"

	"builderboard/cmd/builderboard/api"
	"builderboard/conf"
	"builderboard/internal/middleware"
	"builderboard/pkg/cache"
	"builderboard/pkg/db"
	"builderboard/pkg/logger"
)

func main() {
	configPath := flag.String("c", "config.yaml", "配置文件路径")
	flag.Parse()

	if err := conf.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appCfg := conf.AppConfig

	logger.Init(appCfg.Log)
	defer logger.Sync()

	cache.InitRedis(appCfg.Redis)
	defer cache.CloseRedis()

	dbConn := db.Init(db.NewConfig(
		appCfg.Db.Username,
		appCfg.Db.Password,
		appCfg.Db.Host,
		appCfg.Db.Port,
		appCfg.Db.DbName,
	))

	server := api.NewServer(&appCfg)
	server.Run(middleware.NewMiddleware(), api.InitRouter(dbConn))
}
