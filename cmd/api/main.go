package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/MrJamesThe3rd/kontoflyt/internal/config"
	"github.com/MrJamesThe3rd/kontoflyt/internal/database"
	kontoHttp "github.com/MrJamesThe3rd/kontoflyt/internal/http"
	importHandler "github.com/MrJamesThe3rd/kontoflyt/internal/http/importdoc"
	merchantHandler "github.com/MrJamesThe3rd/kontoflyt/internal/http/merchant"
	ruleHandler "github.com/MrJamesThe3rd/kontoflyt/internal/http/rule"
	txHandler "github.com/MrJamesThe3rd/kontoflyt/internal/http/transaction"
	"github.com/MrJamesThe3rd/kontoflyt/internal/importer"
	"github.com/MrJamesThe3rd/kontoflyt/internal/merchant"
	merchantStore "github.com/MrJamesThe3rd/kontoflyt/internal/merchant/store"
	"github.com/MrJamesThe3rd/kontoflyt/internal/rule"
	ruleStore "github.com/MrJamesThe3rd/kontoflyt/internal/rule/store"
	"github.com/MrJamesThe3rd/kontoflyt/internal/transaction"
	txStore "github.com/MrJamesThe3rd/kontoflyt/internal/transaction/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString(), cfg.DB.MaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		transactions       = txStore.New(db)
		transactionService = transaction.NewService(transactions)
		merchantService    = merchant.NewService(merchantStore.New(db))
		importService      = importer.NewService(transactionService, merchantService, cfg.Import.DefaultCurrency)
		ruleService        = rule.NewService(ruleStore.New(db), transactions, cfg.Rules.InstantPaymentCategory)
	)

	var (
		transactionH = txHandler.NewHandler(transactionService)
		importH      = importHandler.NewHandler(importService, cfg.MaxUploadBytes())
		ruleH        = ruleHandler.NewHandler(ruleService)
		merchantH    = merchantHandler.NewHandler(merchantService)
	)

	router := kontoHttp.New(kontoHttp.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		Timeout:        cfg.Server.Timeout,
	}, transactionH, importH, ruleH, merchantH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
