package main

import (
	"fmt"
	"time"

	"ivm-inventory/internal/auth"
	"ivm-inventory/internal/config"
	"ivm-inventory/internal/database"
	"ivm-inventory/internal/insightvm"
	"ivm-inventory/internal/logger"
	"ivm-inventory/internal/reconcile"
	"ivm-inventory/internal/server"
)

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})

	database.Init(cfg)

	client := insightvm.New(insightvm.Config{
		BaseURL:       cfg.InsightVMBaseURL,
		Username:      cfg.InsightVMUsername,
		Password:      cfg.InsightVMPassword,
		Timeout:       cfg.InsightVMTimeout,
		SkipTLSVerify: cfg.InsightVMSkipTLSVerify,
	})

	store := database.NewSyncStore(database.DB)
	engine := reconcile.NewEngine(client, store, cfg.InsightVMPageSize)

	mgr := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	r := server.NewRouter(cfg, client, engine, mgr)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Infof("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
