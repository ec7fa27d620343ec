package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/config"
	"github.com/jortega/backoffice-api/internal/database"
	"github.com/jortega/backoffice-api/internal/handler"
	"github.com/jortega/backoffice-api/internal/middleware"
	"github.com/jortega/backoffice-api/internal/queue"
	"github.com/jortega/backoffice-api/internal/repository"
	"github.com/jortega/backoffice-api/internal/router"
	queue_publisher "github.com/jortega/backoffice-api/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis backs the refresh blacklist and login throttling. nil is
	// tolerated: the limiter turns into a no-op and refresh fails closed.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: refresh rotation disabled, rate limiting off")
	}

	userRepo := repository.NewUserRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	clientRepo := repository.NewClientRepo(db)
	providerRepo := repository.NewProviderRepo(db)
	warehouseRepo := repository.NewWarehouseRepo(db)
	articleRepo := repository.NewArticleRepo(db)
	blacklist := repository.NewRefreshBlacklist(rdb)

	// Seed the default company and article when the tables are empty so
	// registration always has a primary company to attach accounts to.
	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := companyRepo.SeedDefault(seedCtx); err != nil {
		log.Fatalf("seed companies: %v", err)
	}
	if err := articleRepo.SeedDefault(seedCtx); err != nil {
		log.Fatalf("seed articles: %v", err)
	}
	cancel()

	authH := handler.NewAuthHandler(cfg, userRepo, companyRepo, blacklist, queue_publisher.PublishAccountEvent)
	meH := handler.NewMeHandler(cfg, userRepo)
	adminH := handler.NewUserAdminHandler(userRepo, queue_publisher.PublishAccountEvent)
	companyH := handler.NewCompanyHandler(companyRepo)
	contactH := handler.NewContactHandler(clientRepo, providerRepo)
	catalogH := handler.NewCatalogHandler(warehouseRepo, articleRepo)
	locationH := handler.NewLocationHandler(cfg)

	limiter := middleware.LoginRateLimit(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAccounts(e, authH, meH, adminH, cfg.JWTSecret, userRepo, limiter)
	router.RegisterBackoffice(e, companyH, contactH, catalogH, locationH, cfg.JWTSecret, userRepo)

	// Audit consumer runs for the life of the process and reconnects on
	// broker failures.
	go func() {
		if err := queue.StartAccountConsumer(); err != nil {
			log.Printf("account consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
