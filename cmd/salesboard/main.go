package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/auth"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/config"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/db"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/routers"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/service"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialise zap logger: %v", err)
	}

	if err := run(logger, os.Args[1:]); err != nil {
		logger.Error("salesboard stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run owns every resource that needs closing, so its defers complete before main exits.
func run(logger *zap.Logger, args []string) error {
	cfg, err := config.New(args)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := db.Migrate(cfg.DatabaseURI); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	dbConn, err := db.Init(cfg.DatabaseURI, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbConn.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ImportFile != "" {
		if err := runImport(ctx, cfg, dbConn, logger); err != nil {
			return fmt.Errorf("import %s: %w", cfg.ImportFile, err)
		}
		return nil
	}
	return serve(ctx, cfg, dbConn, logger)
}

func serve(ctx context.Context, cfg *config.Config, dbConn *sql.DB, logger *zap.Logger) error {
	tokens := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	userService := service.NewUserService(db.NewUserRepoPG(dbConn), tokens)
	salesService := service.NewSalesService(db.NewSalesRepoPG(dbConn))
	uploadService := service.NewUploadService(db.NewUploadLogRepoPG(dbConn), cfg.UploadDir, logger)

	h := routers.NewHandler(userService, salesService, uploadService, dbConn, logger, cfg.MaxUploadBytes)
	srv := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      routers.SetupRoutersWithLogger(h, tokens, cfg.CORSOrigins, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started", zap.String("address", cfg.RunAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runImport(ctx context.Context, cfg *config.Config, dbConn *sql.DB, logger *zap.Logger) error {
	f, err := os.Open(cfg.ImportFile)
	if err != nil {
		return err
	}
	defer f.Close()

	importer := service.NewImportService(db.NewSalesRepoPG(dbConn), cfg.ImportBatchSize, logger)
	res, err := importer.Import(ctx, f)
	logger.Info("import finished",
		zap.String("file", cfg.ImportFile),
		zap.Int("inserted", res.Inserted),
		zap.Int("skipped", res.Skipped),
	)
	return err
}
