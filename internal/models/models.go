package models

import (
	"time"

	"gorm.io/gorm"
)

// Category distinguishes the two loyalty program kinds the portal lists.
type Category string

const (
	CategoryPoints   Category = "points"
	CategoryCashback Category = "cashback"
)

// Partner is a merchant listed on the portal home page.
// Identity is the name: discovery deduplicates by it, first occurrence wins.
type Partner struct {
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Category Category `json:"category"`
}

// Promotion represents one loyalty offer for a partner store.
//
// DirectURL and ValidUntil are nil until the link resolver fills them; both
// staying nil is a valid terminal state when the destination page exposes
// neither a link nor a validity date.
type Promotion struct {
	// GORM will automatically add ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// the partner store offering the promotion
	//
	// required: true
	Store string `json:"store" gorm:"type:varchar(255);uniqueIndex:idx_store_program_category"`
	// the loyalty program the offer belongs to
	//
	// required: true
	Program string `json:"program" gorm:"type:varchar(255);uniqueIndex:idx_store_program_category"`
	// the advertised value, verbatim (e.g. "8 pts/R$" or "5%")
	//
	// required: true
	Value string `json:"value" gorm:"type:varchar(100)"`
	// points or cashback
	//
	// required: true
	Category Category `json:"category" gorm:"type:varchar(20);uniqueIndex:idx_store_program_category"`
	// product-with-cashback offers are excluded from the pipeline entirely;
	// extraction never scans product blocks, so this stays false
	IsProduct bool `json:"isProduct" gorm:"-"`
	// the portal page the promotion was extracted from
	URL string `json:"url" gorm:"type:varchar(2048)"`

	// the final merchant URL reached through the portal's redirect flow
	DirectURL *string `json:"directUrl,omitempty" gorm:"type:varchar(2048)"`
	// the date after which the promotion is no longer honored
	ValidUntil *time.Time `json:"validUntil,omitempty"`
}

// BonusPromotion is a program-to-program point-transfer offer parsed from a
// free-text title. Any of the parsed fields may be empty when the title does
// not follow the usual wording; partial extraction is expected.
type BonusPromotion struct {
	gorm.Model

	Title       string     `json:"title" gorm:"type:varchar(512);uniqueIndex"`
	FromProgram string     `json:"fromProgram,omitempty" gorm:"type:varchar(255)"`
	ToProgram   string     `json:"toProgram,omitempty" gorm:"type:varchar(255)"`
	BonusValue  string     `json:"bonusValue,omitempty" gorm:"type:varchar(20)"`
	ValidUntil  *time.Time `json:"validUntil,omitempty"`
}

// CollectionResult aggregates everything one collector run produced. It is
// owned by the run that created it and never mutated afterwards.
type CollectionResult struct {
	Promotions      []Promotion      `json:"promotions"`
	BonusPromotions []BonusPromotion `json:"bonusPromotions"`
	CollectedAt     time.Time        `json:"collectedAt"`
}
