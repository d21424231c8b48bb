package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	gqladp "loan-servicing-api/internal/adapter/graphql"
	httpadp "loan-servicing-api/internal/adapter/http"
	mw "loan-servicing-api/internal/adapter/middleware"
	"loan-servicing-api/internal/config"
	domain "loan-servicing-api/internal/domain/loan"
	"loan-servicing-api/internal/infrastructure/cache"
	"loan-servicing-api/internal/infrastructure/filestore"
	"loan-servicing-api/internal/infrastructure/sqlstore"
	loanuc "loan-servicing-api/internal/usecase/loan"
	paymentuc "loan-servicing-api/internal/usecase/payment"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	var store domain.Store
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		s, err := sqlstore.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite store: %v", err)
		}
		store = s
	default:
		store = filestore.New(cfg.DataFile)
	}

	queries := loanuc.NewUsecase(store)
	mutations := paymentuc.NewUsecase(store, nil)

	h := httpadp.NewHandler()
	lh := httpadp.NewLoanHandler(queries, mutations)
	gh, err := gqladp.NewHandler(queries, mutations)
	if err != nil {
		log.Fatalf("graphql schema: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())
	if cfg.ResponseDelayMS > 0 {
		e.Use(mw.ResponseDelay(time.Duration(cfg.ResponseDelayMS) * time.Millisecond))
	}
	// idempotency protects the payment route only, and only when redis is configured
	var paymentMW []echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		rdb, err := cache.Open(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		paymentMW = append(paymentMW, mw.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	}

	// routes
	e.GET("/", h.Home)
	e.GET("/health", h.Health)
	e.GET("/loans", lh.ListLoans)
	e.GET("/loan_payments", lh.ListPayments)
	e.POST("/make_payment", lh.MakePayment, paymentMW...)
	e.PUT("/loans/:loan_id", lh.UpdateLoan)
	e.DELETE("/loans/:loan_id", lh.DeleteLoan)
	e.GET("/graphql", gh.Explorer)
	e.POST("/graphql", gh.Query)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
