package main

import (
	"os"
	"strings"

	"github.com/google/logger"
	"github.com/joho/godotenv"

	"github.com/maru-games/gacha-settlement-engine/catalog"
	"github.com/maru-games/gacha-settlement-engine/config"
	"github.com/maru-games/gacha-settlement-engine/events"
	"github.com/maru-games/gacha-settlement-engine/server"
	"github.com/maru-games/gacha-settlement-engine/settle"
	"github.com/maru-games/gacha-settlement-engine/storage/memory"
	"github.com/maru-games/gacha-settlement-engine/storage/postgres"
)

func main() {
	// Load .env so DATABASE_URL and friends are set for local runs.
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := config.Load()
	defer logger.Init("gacha-settlement", cfg.LogVerbose, false, os.Stdout).Close()

	var (
		campaigns catalog.CampaignStore
		items     catalog.Reader
		store     settle.SettlementStore
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("open database: %v", err)
		}
		pg := postgres.NewStore(db)
		campaigns, items, store = pg, pg, pg
		logger.Info("storage: postgres")
	} else {
		mem := memory.NewStore()
		seed, err := catalog.LoadSeed(cfg.CatalogPath)
		if err != nil {
			logger.Fatalf("load catalog seed %s: %v", cfg.CatalogPath, err)
		}
		if err := mem.ApplySeed(seed); err != nil {
			logger.Fatalf("apply catalog seed: %v", err)
		}
		campaigns, items, store = mem, mem, mem
		logger.Infof("storage: in-memory, seeded %d campaigns and %d items from %s",
			len(seed.Campaigns), len(seed.Items), cfg.CatalogPath)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaBroker != "" {
		kp := events.NewKafkaPublisher(strings.Split(cfg.KafkaBroker, ","), cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		logger.Infof("events: kafka %s topic %s", cfg.KafkaBroker, cfg.KafkaTopic)
	}

	coord := settle.New(campaigns, items, store, publisher)
	srv := server.New(cfg, coord, store)
	if err := srv.Run(); err != nil {
		logger.Fatal(err)
	}
}
