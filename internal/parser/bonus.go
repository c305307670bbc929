package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"promo_scraper/internal/models"
)

const (
	bonusBlockSelector    = ".promocao-bonificada"
	bonusTitleSelector    = ".promocao-titulo"
	bonusValiditySelector = ".promocao-validade"
)

// ParseBonusPromotions extracts bonus transfer promotions from the dedicated
// listing page. Blocks with an empty title are skipped; the validity text is
// normalized when present and left nil otherwise.
func ParseBonusPromotions(reader io.Reader) ([]models.BonusPromotion, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		if closer, ok := reader.(io.Closer); ok {
			closer.Close()
		}
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var promotions []models.BonusPromotion

	goquery.NewDocumentFromNode(doc).Find(bonusBlockSelector).Each(func(i int, sel *goquery.Selection) {
		title := strings.TrimSpace(sel.Find(bonusTitleSelector).Text())
		if title == "" {
			return
		}

		promo := ParseBonusTitle(title)
		if raw := strings.TrimSpace(sel.Find(bonusValiditySelector).Text()); raw != "" {
			if date, ok := ParseDate(raw); ok {
				promo.ValidUntil = &date
			}
		}

		promotions = append(promotions, promo)
	})

	return promotions, nil
}
