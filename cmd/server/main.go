package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"hsms-backend/internal/config"
	"hsms-backend/internal/db"
	"hsms-backend/internal/lock"
	"hsms-backend/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	database, err := db.Open(cfg.DbDsn)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}

	if err := db.SeedAdmin(database, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
		log.Fatalf("admin seed error: %v", err)
	}

	var locker lock.Locker = lock.NewLocalLock()
	if cfg.RedisAddr != "" {
		redisLock, err := lock.NewRedisLock(cfg.RedisAddr)
		if err != nil {
			log.Fatalf("redis error: %v", err)
		}
		locker = redisLock
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	routes.Register(router, database, cfg, locker)

	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
