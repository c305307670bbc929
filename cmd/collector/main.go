package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"promo_scraper/internal/config"
	"promo_scraper/internal/logger"
	"promo_scraper/internal/models"
	"promo_scraper/internal/repository"
	"promo_scraper/internal/service"
	"promo_scraper/pkg/headless"
)

// --- Main Application Logic ---
func main() {
	// 1. Load configuration
	appConfig := config.Init()

	log := logger.New(appConfig.LogLevel)
	defer log.Sync()

	// 2. Database Connection (using GORM)
	db, err := gorm.Open(postgres.Open(appConfig.DBConn), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal("error connecting to database", zap.Error(err))
	}
	log.Info("connected to PostgreSQL")

	// 3. Dependency Injection: Initialize components
	promoRepo := repository.NewPostgresPromotionRepository(db)
	portalRepo := repository.NewPortalRepository(nil, appConfig.Collect.FetchTimeout)
	resolver := headless.NewResolver(appConfig.Collect.NavTimeout, log)
	collector := service.NewCollectorService(portalRepo, resolver, appConfig.BaseURL, log)

	// 4. Database Migration
	ctx := context.Background()
	if err := promoRepo.Init(ctx); err != nil {
		log.Fatal("database auto-migration failed", zap.Error(err))
	}

	// Initialize AI Categorizer
	var categorizer service.Categorizer
	if appConfig.AIAPIKey != "" {
		aiCat, err := service.NewAICategorizer(ctx, appConfig.AIAPIKey, log)
		if err != nil {
			log.Warn("failed to initialize AI categorizer; segment grouping will be skipped", zap.Error(err))
		} else {
			categorizer = aiCat
			defer aiCat.Close()
		}
	} else {
		log.Info("no AI API key provided; segment grouping will be skipped")
	}

	// 5. Run the collection pipeline
	opts := service.Options{
		MaxStores:               appConfig.Collect.MaxStores,
		IncludePointsPrograms:   appConfig.Collect.IncludePointsPrograms,
		IncludeCashbackPrograms: appConfig.Collect.IncludeCashbackPrograms,
		IncludeBonusPromotions:  appConfig.Collect.IncludeBonusPromotions,
		NavTimeout:              appConfig.Collect.NavTimeout,
	}
	result, err := collector.Run(ctx, opts)
	if err != nil {
		log.Fatal("collection run failed", zap.Error(err))
	}
	log.Info("collection completed",
		zap.Int("promotions", len(result.Promotions)),
		zap.Int("bonus_promotions", len(result.BonusPromotions)))

	// 6. Persist promotions and bonus promotions in parallel
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := promoRepo.InsertPromotions(gCtx, result.Promotions)
		if err != nil {
			return fmt.Errorf("error inserting promotions: %w", err)
		}
		log.Info("promotions persisted", zap.Int("count", count))
		return nil
	})
	g.Go(func() error {
		count, err := promoRepo.InsertBonusPromotions(gCtx, result.BonusPromotions)
		if err != nil {
			return fmt.Errorf("error inserting bonus promotions: %w", err)
		}
		log.Info("bonus promotions persisted", zap.Int("count", count))
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Fatal("persistence failed", zap.Error(err))
	}

	// 7. Final Output: the distributable digest, plus optional segment grouping
	digest := service.FormatText(result)
	if categorizer != nil {
		digest += segmentSection(ctx, categorizer, result, log)
	}

	fmt.Fprintln(os.Stdout, digest)
}

// segmentSection asks the categorizer to group the collected stores and
// renders the grouping as an extra digest section. Failures only cost the
// section, never the digest.
func segmentSection(ctx context.Context, categorizer service.Categorizer, result *models.CollectionResult, log *zap.Logger) string {
	seen := make(map[string]bool)
	stores := make([]string, 0, len(result.Promotions))
	for _, promo := range result.Promotions {
		if !seen[promo.Store] {
			seen[promo.Store] = true
			stores = append(stores, promo.Store)
		}
	}

	segments, err := categorizer.Categorize(ctx, stores)
	if err != nil || len(segments) == 0 {
		if err != nil {
			log.Warn("store segment grouping failed", zap.Error(err))
		}
		return ""
	}

	// Invert store->segments into segment->stores for readable output.
	bySegment := make(map[string][]string)
	for store, segs := range segments {
		for _, seg := range segs {
			bySegment[seg] = append(bySegment[seg], store)
		}
	}
	names := make([]string, 0, len(bySegment))
	for seg := range bySegment {
		names = append(names, seg)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("\n\nLOJAS POR SEGMENTO:\n\n")
	for _, seg := range names {
		stores := bySegment[seg]
		sort.Strings(stores)
		fmt.Fprintf(&b, "%s: %s\n", seg, strings.Join(stores, ", "))
	}
	return b.String()
}
