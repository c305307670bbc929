package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"        // GORM library
	"gorm.io/gorm/clause" // Required for Upsert logic (OnConflict)

	"promo_scraper/internal/models"
)

// PromotionRepository defines the interface for persisting collected promotions.
type PromotionRepository interface {
	InsertPromotions(ctx context.Context, promotions []models.Promotion) (int, error)
	InsertBonusPromotions(ctx context.Context, promotions []models.BonusPromotion) (int, error)
	CountPromotions(ctx context.Context) (int, error)
	GetCurrentPromotions(ctx context.Context) ([]models.Promotion, error)
	GetBonusPromotions(ctx context.Context) ([]models.BonusPromotion, error)
	// Init method for GORM AutoMigrate
	Init(ctx context.Context) error
}

// PostgresPromotionRepository implements PromotionRepository for PostgreSQL using GORM.
type PostgresPromotionRepository struct {
	db *gorm.DB
}

// NewPostgresPromotionRepository creates a new instance.
func NewPostgresPromotionRepository(db *gorm.DB) *PostgresPromotionRepository {
	return &PostgresPromotionRepository{
		db: db,
	}
}

// Init handles GORM's automatic table creation/migration.
func (r *PostgresPromotionRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.Promotion{}, &models.BonusPromotion{})
}

// InsertPromotions uses GORM to perform a bulk UPSERT (Insert or Update) operation.
func (r *PostgresPromotionRepository) InsertPromotions(ctx context.Context, promotions []models.Promotion) (int, error) {
	if len(promotions) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		// Target the unique index defined on (Store, Program, Category)
		Columns:   []clause.Column{{Name: "store"}, {Name: "program"}, {Name: "category"}},
		UpdateAll: true,
	}).CreateInBatches(&promotions, 100)

	if result.Error != nil {
		return 0, fmt.Errorf("gorm bulk upsert failed: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

// InsertBonusPromotions upserts bonus transfer promotions keyed by title.
func (r *PostgresPromotionRepository) InsertBonusPromotions(ctx context.Context, promotions []models.BonusPromotion) (int, error) {
	if len(promotions) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "title"}},
		UpdateAll: true,
	}).CreateInBatches(&promotions, 100)

	if result.Error != nil {
		return 0, fmt.Errorf("gorm bulk upsert failed: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

// CountPromotions returns the total number of stored promotions.
func (r *PostgresPromotionRepository) CountPromotions(ctx context.Context) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Promotion{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("gorm count failed: %w", result.Error)
	}
	return int(count), nil
}

// GetCurrentPromotions fetches promotions whose validity has not passed.
// Promotions without a known validity date are kept; expiry is only enforced
// when a date was actually resolved.
func (r *PostgresPromotionRepository) GetCurrentPromotions(ctx context.Context) ([]models.Promotion, error) {
	var promotions []models.Promotion
	now := time.Now()
	result := r.db.WithContext(ctx).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Find(&promotions)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve promotions: %w", result.Error)
	}
	return promotions, nil
}

// GetBonusPromotions fetches all stored bonus transfer promotions.
func (r *PostgresPromotionRepository) GetBonusPromotions(ctx context.Context) ([]models.BonusPromotion, error) {
	var promotions []models.BonusPromotion
	result := r.db.WithContext(ctx).Find(&promotions)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to retrieve bonus promotions: %w", result.Error)
	}
	return promotions, nil
}
