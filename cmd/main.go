package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"GtnPortal/internal/appmanager"
	"GtnPortal/internal/config"
	"GtnPortal/internal/headers"
	"GtnPortal/internal/ingest"
	"GtnPortal/internal/logger"
	"GtnPortal/internal/masterdata"
)

func main() {
	// Load .env for local dev
	_ = godotenv.Load(".env")
	cfg := config.Load()

	if cfg.AuthDatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.AuthDatabaseURL)
		if err != nil {
			log.Fatal("failed to open identity database: ", err)
		}
		defer db.Close()
		appmanager.SetDB(db)
	}

	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			log.Fatal("failed to connect to master data database: ", err)
		}
		repo := masterdata.NewPostgresRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatal("failed to prepare master data schema: ", err)
		}
		cancel()
		defer pool.Close()
		appmanager.SetPgxPool(pool)
		appmanager.SetRepository(repo)
	}

	resolver := headers.Default()
	if cfg.HeaderAliasesFile != "" {
		r, err := headers.LoadAliases(cfg.HeaderAliasesFile)
		if err != nil {
			log.Fatal("failed to load header aliases: ", err)
		}
		resolver = r
	}
	appmanager.SetIngestService(ingest.NewService(resolver, nil))

	manager := appmanager.NewAppManager()

	// Load service configs from YAML
	servicesCfg, err := appmanager.LoadServiceSequence(cfg.ServicesFile)
	if err != nil {
		log.Fatal("failed to load service sequence: ", err)
	}
	manager.AutoRegisterServices(servicesCfg)

	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start: ", err)
	}
	logger.L().Info("gtn portal running", zap.String("addr", cfg.HTTPAddr))

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := manager.StopAll(); err != nil {
		log.Println("failed to stop cleanly:", err)
	}
}
