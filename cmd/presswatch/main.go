package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/hts-life/presswatch/internal/config"
	"github.com/hts-life/presswatch/internal/domain/models"
	"github.com/hts-life/presswatch/internal/repository/pressdb"
	"github.com/hts-life/presswatch/internal/repository/sheets"
	"github.com/hts-life/presswatch/internal/scheduler"
	"github.com/hts-life/presswatch/internal/server/handlers"
	"github.com/hts-life/presswatch/internal/server/router"
	"github.com/hts-life/presswatch/internal/service/maintenance"
	"github.com/hts-life/presswatch/pkg/clients/telegram"
	"github.com/hts-life/presswatch/pkg/logger"
)

const usage = `usage:
  presswatch check <transaction_id> <stock_code> [threshold]
  presswatch reset <stock_code>
  presswatch serve`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(command != "serve"))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	db, err := sql.Open("mysql", cfg.Database.DSN)
	if err != nil {
		baseLogger.Fatal("failed to open press database", zap.Error(err))
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		baseLogger.Fatal("failed to connect press database", zap.Error(err))
	}
	cancelPing()

	repo := pressdb.NewRepository(db)

	var production maintenance.ProductionSource = repo
	if cfg.Monitor.ProductionSource == config.ProductionSourceSheets {
		sheetSource, err := sheets.NewProductionSheetSource(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets production source", zap.Error(err))
		}
		production = sheetSource
	}

	notifier := telegram.NewClient(cfg.Telegram)
	maintenanceSvc := maintenance.NewService(production, repo, notifier, cfg.Monitor.Threshold, baseLogger.Named("svc.maintenance"))

	switch command {
	case "check":
		runCheck(maintenanceSvc, os.Args[2:])
	case "reset":
		runReset(maintenanceSvc, os.Args[2:])
	case "serve":
		runServe(cfg, maintenanceSvc, baseLogger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func runCheck(svc *maintenance.Service, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	req := models.CheckRequest{
		TransactionID: args[0],
		StockCode:     args[1],
	}
	if len(args) > 2 {
		threshold, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid threshold %q: %v\n", args[2], err)
			os.Exit(2)
		}
		req.Threshold = threshold
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	status, err := svc.Check(ctx, req)
	if err != nil {
		zap.L().Fatal("maintenance check failed", zap.String("stock_code", req.StockCode), zap.Error(err))
	}

	if status == nil {
		fmt.Printf("No production recorded today for stock code %s.\n", req.StockCode)
		return
	}

	fmt.Print(maintenance.Report(*status))
}

func runReset(svc *maintenance.Service, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	stockCode := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := svc.Reset(ctx, stockCode); err != nil {
		zap.L().Fatal("maintenance reset failed", zap.String("stock_code", stockCode), zap.Error(err))
	}

	fmt.Printf("Maintenance counter reset for stock code %s.\n", stockCode)
}

func runServe(cfg *config.Config, maintenanceSvc *maintenance.Service, baseLogger *zap.Logger) {
	handler := handlers.NewMaintenanceHandler(maintenanceSvc, baseLogger.Named("handlers.maintenance"))
	engine := router.New(handler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Monitor, maintenanceSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
