package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"promo_scraper/internal/config"
	"promo_scraper/internal/logger"
	"promo_scraper/internal/repository"
	"promo_scraper/internal/service"
	"promo_scraper/pkg/headless"
)

// A collection run drives one browser session per promotion; give it room.
const collectTimeout = 15 * time.Minute

// initDatabase establishes a connection and initializes the repository.
func initDatabase(dsn string, log *zap.Logger) repository.PromotionRepository {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("could not connect to the database", zap.Error(err))
	}
	log.Info("connected to PostgreSQL for API server")

	promoRepo := repository.NewPostgresPromotionRepository(db)
	if err := promoRepo.Init(context.Background()); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}
	return promoRepo
}

type PromoAPI struct {
	repo      repository.PromotionRepository
	collector service.CollectorService
	defaults  config.CollectDefaults
	log       *zap.Logger
}

// promotionsHandler serves the currently valid stored promotions as JSON.
func (p PromoAPI) promotionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	promotions, err := p.repo.GetCurrentPromotions(ctx)
	if err != nil {
		http.Error(w, "Could not retrieve data from the database", http.StatusInternalServerError)
		p.log.Error("error fetching promotions", zap.Error(err))
		return
	}

	bonus, err := p.repo.GetBonusPromotions(ctx)
	if err != nil {
		http.Error(w, "Could not retrieve data from the database", http.StatusInternalServerError)
		p.log.Error("error fetching bonus promotions", zap.Error(err))
		return
	}

	payload := map[string]any{
		"promotions":      promotions,
		"bonusPromotions": bonus,
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		p.log.Error("error encoding JSON", zap.Error(err))
	}
}

// collectHandler triggers a collection run with options taken from query
// parameters and returns the structured result plus the text digest.
func (p PromoAPI) collectHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	opts := service.Options{
		MaxStores:               p.defaults.MaxStores,
		IncludePointsPrograms:   r.URL.Query().Get("includePointsPrograms") != "false",
		IncludeCashbackPrograms: r.URL.Query().Get("includeCashbackPrograms") != "false",
		IncludeBonusPromotions:  r.URL.Query().Get("includeBonusPromotions") != "false",
		NavTimeout:              p.defaults.NavTimeout,
	}
	if raw := r.URL.Query().Get("maxStores"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			opts.MaxStores = n
		}
	}
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			opts.NavTimeout = time.Duration(n) * time.Second
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), collectTimeout)
	defer cancel()

	result, err := p.collector.Run(ctx, opts)
	if err != nil {
		p.log.Error("collection run failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "Erro ao coletar promoções",
		})
		return
	}

	if _, err := p.repo.InsertPromotions(ctx, result.Promotions); err != nil {
		p.log.Error("error persisting promotions", zap.Error(err))
	}
	if _, err := p.repo.InsertBonusPromotions(ctx, result.BonusPromotions); err != nil {
		p.log.Error("error persisting bonus promotions", zap.Error(err))
	}

	json.NewEncoder(w).Encode(map[string]any{
		"success":       true,
		"data":          result,
		"formattedText": service.FormatText(result),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

// indexHandler serves the main page.
func indexHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "web/index.html")
}

func main() {
	const port = "8080"
	conf := config.Init()
	log := logger.New(conf.LogLevel)
	defer log.Sync()

	// 1. Initialize Database Connection and Repository
	database := initDatabase(conf.DBConn, log)

	// 2. Wire the collection pipeline behind the API
	portalRepo := repository.NewPortalRepository(nil, conf.Collect.FetchTimeout)
	resolver := headless.NewResolver(conf.Collect.NavTimeout, log)
	collector := service.NewCollectorService(portalRepo, resolver, conf.BaseURL, log)

	api := PromoAPI{
		repo:      database,
		collector: collector,
		defaults:  conf.Collect,
		log:       log,
	}

	// 3. Set up Handlers
	http.HandleFunc("/", indexHandler)
	http.HandleFunc("/api/promotions", api.promotionsHandler)
	http.HandleFunc("/api/collect", api.collectHandler)

	count, err := database.CountPromotions(context.Background())
	if err != nil {
		log.Fatal("error counting promotions", zap.Error(err))
	}
	log.Info("server starting", zap.String("port", port), zap.Int("stored_promotions", count))
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
