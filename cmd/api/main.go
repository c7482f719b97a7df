package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wastenot/internal/config"
	"wastenot/internal/handler"
	"wastenot/internal/infra/db"
	"wastenot/internal/infra/qrcode"
	infraRepo "wastenot/internal/infra/repository"
	"wastenot/internal/infra/token"
	"wastenot/internal/observability"
	"wastenot/internal/server"
	"wastenot/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	//.envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logger := observability.NewLogger(cfg.ServiceName, cfg.LogLevel, cfg.GoEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//トレース
	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal().Err(err).Msg("init tracer")
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	//DB接続
	gormDB, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logger.Error().Err(err).Msg("close db")
		}
	}()
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	//メトリクス
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB, cfg.TxTimeout)
	listingRepo := infraRepo.NewListingGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	branchRepo := infraRepo.NewBranchGormRepository(gormDB)
	claimRepo := infraRepo.NewClaimGormRepository(gormDB)
	claimItemRepo := infraRepo.NewClaimItemGormRepository(gormDB)
	pickupRepo := infraRepo.NewPickupGormRepository(gormDB)
	metricsRepo := infraRepo.NewMetricsGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	tokens := token.NewGenerator()

	//Usecase生成
	listingUC := usecase.NewListingUsecase(txm, listingRepo, inventoryRepo, productRepo, branchRepo, idGen, clock, metrics)
	claimUC := usecase.NewClaimUsecase(txm, claimRepo, claimItemRepo, branchRepo, idGen, clock, metrics)
	approvalUC := usecase.NewApprovalUsecase(txm, claimRepo, claimItemRepo, pickupRepo, branchRepo, tokens, idGen, clock, metrics)
	pickupUC := usecase.NewPickupUsecase(txm, claimRepo, claimItemRepo, pickupRepo, branchRepo, clock, metrics)
	analyticsUC := usecase.NewAnalyticsUsecase(metricsRepo, clock)

	//Handler生成
	handlers := server.Handlers{
		Products:  handler.NewProductHandler(listingUC),
		Listings:  handler.NewListingHandler(listingUC),
		Claims:    handler.NewClaimHandler(claimUC, approvalUC),
		Pickups:   handler.NewPickupHandler(approvalUC, pickupUC, qrcode.NewRenderer()),
		Analytics: handler.NewAnalyticsHandler(analyticsUC),
	}

	e := server.New(cfg, logger, metrics, registry, handlers)

	//Server起動
	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}
	logger.Info().Str("addr", addr).Msg("server started")
	if err := server.Run(ctx, e, addr); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		return
	}
	logger.Info().Msg("server stopped")
}
