package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"promo_scraper/internal/models"
	"promo_scraper/internal/parser"
	"promo_scraper/internal/repository"
)

// Path of the bonus transfer listing, relative to the portal base URL.
const bonusPromotionsPath = "/promocoes-bonificadas"

// Options control a single collection run.
type Options struct {
	// MaxStores caps the partner list before iteration; 0 means unlimited.
	MaxStores               int
	IncludePointsPrograms   bool
	IncludeCashbackPrograms bool
	IncludeBonusPromotions  bool
	// NavTimeout bounds each browser resolution; 0 means the resolver default.
	NavTimeout time.Duration
}

// DefaultOptions enables every category with no store cap.
func DefaultOptions() Options {
	return Options{
		IncludePointsPrograms:   true,
		IncludeCashbackPrograms: true,
		IncludeBonusPromotions:  true,
	}
}

// LinkResolver resolves a promotion's outbound link and validity date.
// A resolver must return the promotion unchanged on any recoverable failure
// and fall back to its own default when navTimeout is zero.
type LinkResolver interface {
	Resolve(ctx context.Context, promo models.Promotion, navTimeout time.Duration) models.Promotion
}

// CollectorService defines the business logic contract for a collection run.
type CollectorService interface {
	Run(ctx context.Context, opts Options) (*models.CollectionResult, error)
}

// collectorService sequences partner discovery, per-partner extraction and
// link resolution, and bonus promotion collection. Partners and promotions
// are processed one at a time: every resolution opens a dedicated browser
// session and running those concurrently multiplies process overhead for no
// gain on a latency-dominated workload.
type collectorService struct {
	repo     repository.PortalRepository
	resolver LinkResolver
	baseURL  string
	logger   *zap.Logger
}

// NewCollectorService creates a collector over the portal repository and link resolver.
func NewCollectorService(repo repository.PortalRepository, resolver LinkResolver, baseURL string, logger *zap.Logger) CollectorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &collectorService{
		repo:     repo,
		resolver: resolver,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// Run executes one collection pass and returns the aggregated result. Empty
// sequences are valid success: a failed fetch or a partner that yields nothing
// never aborts the remaining work.
func (s *collectorService) Run(ctx context.Context, opts Options) (*models.CollectionResult, error) {
	result := &models.CollectionResult{
		Promotions:      []models.Promotion{},
		BonusPromotions: []models.BonusPromotion{},
		CollectedAt:     time.Now().UTC(),
	}

	partners := s.discoverPartners(ctx)
	s.logger.Info("partners discovered", zap.Int("count", len(partners)))

	if opts.MaxStores > 0 && len(partners) > opts.MaxStores {
		partners = partners[:opts.MaxStores]
	}

	for i, partner := range partners {
		promotions := s.partnerPromotions(ctx, partner, opts)

		kept := 0
		for _, promo := range promotions {
			// Defensive: extraction never scans product blocks, so this
			// should never trip.
			if promo.IsProduct {
				continue
			}
			if s.resolver != nil {
				promo = s.resolver.Resolve(ctx, promo, opts.NavTimeout)
			}
			result.Promotions = append(result.Promotions, promo)
			kept++
		}

		s.logger.Info("partner processed",
			zap.Int("index", i+1),
			zap.Int("total", len(partners)),
			zap.String("store", partner.Name),
			zap.Int("promotions", kept))
	}

	if opts.IncludeBonusPromotions {
		bonus := s.bonusPromotions(ctx)
		s.logger.Info("bonus promotions collected", zap.Int("count", len(bonus)))
		result.BonusPromotions = append(result.BonusPromotions, bonus...)
	}

	return result, nil
}

// discoverPartners fetches the portal home page and extracts partner stores.
// Any failure degrades to an empty list; the run tolerates zero partners.
func (s *collectorService) discoverPartners(ctx context.Context) []models.Partner {
	reader, err := s.repo.Fetch(ctx, s.baseURL)
	if err != nil {
		s.logger.Warn("portal home fetch failed", zap.Error(err))
		return nil
	}

	partners, err := parser.ParsePartners(reader, s.baseURL)
	if err != nil {
		s.logger.Warn("partner discovery parse failed", zap.Error(err))
		return nil
	}
	return partners
}

// partnerPromotions fetches and extracts one partner's raw promotions. When
// both categories are excluded the page is never fetched at all. A failing
// partner is logged and yields nothing, leaving the rest of the run intact.
func (s *collectorService) partnerPromotions(ctx context.Context, partner models.Partner, opts Options) []models.Promotion {
	if !opts.IncludePointsPrograms && !opts.IncludeCashbackPrograms {
		return nil
	}

	reader, err := s.repo.Fetch(ctx, partner.URL)
	if err != nil {
		s.logger.Warn("partner page fetch failed",
			zap.String("store", partner.Name), zap.Error(err))
		return nil
	}

	promotions, err := parser.ParsePromotions(reader, partner, opts.IncludePointsPrograms, opts.IncludeCashbackPrograms)
	if err != nil {
		s.logger.Warn("partner page parse failed",
			zap.String("store", partner.Name), zap.Error(err))
		return nil
	}
	return promotions
}

// bonusPromotions fetches and extracts the bonus transfer listing.
func (s *collectorService) bonusPromotions(ctx context.Context) []models.BonusPromotion {
	url := s.baseURL + bonusPromotionsPath

	reader, err := s.repo.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("bonus listing fetch failed", zap.Error(err))
		return nil
	}

	promotions, err := parser.ParseBonusPromotions(reader)
	if err != nil {
		s.logger.Warn("bonus listing parse failed", zap.Error(err))
		return nil
	}
	return promotions
}
