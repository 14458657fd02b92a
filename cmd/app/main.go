package main

import (
	"flag"
	"log"
	"os"

	"CoinPilot/internal/di"
	"CoinPilot/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s backend=%s hotlist=%v interval=%s",
		cfg.Environment, cfg.Cache.Backend, cfg.Refresh.HotList, cfg.Refresh.Interval)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
