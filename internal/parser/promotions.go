package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"promo_scraper/internal/models"
)

// Selectors for the two promotion block types on a partner page. Product
// blocks use a different structure and are intentionally never scanned, which
// is what keeps product offers out of the pipeline.
const (
	pointsBlockSelector   = ".pontos-milhas"
	cashbackBlockSelector = ".cashback"
	programNameSelector   = ".programa-nome"
	pointsValueSelector   = ".pontos-valor"
	cashbackValueSelector = ".cashback-valor"
)

// ParsePromotions extracts the raw promotions from a partner page, one block
// type per enabled category. A block missing its program name or value is
// skipped, not an error. DirectURL and ValidUntil are left nil for the link
// resolver to fill.
func ParsePromotions(reader io.Reader, partner models.Partner, includePoints, includeCashback bool) ([]models.Promotion, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		if closer, ok := reader.(io.Closer); ok {
			closer.Close()
		}
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	root := goquery.NewDocumentFromNode(doc)
	var promotions []models.Promotion

	appendBlocks := func(blockSelector, valueSelector string, category models.Category) {
		root.Find(blockSelector).Each(func(i int, sel *goquery.Selection) {
			program := strings.TrimSpace(sel.Find(programNameSelector).Text())
			value := strings.TrimSpace(sel.Find(valueSelector).Text())
			if program == "" || value == "" {
				return
			}

			promotions = append(promotions, models.Promotion{
				Store:    partner.Name,
				Program:  program,
				Value:    value,
				Category: category,
				URL:      partner.URL,
			})
		})
	}

	if includePoints {
		appendBlocks(pointsBlockSelector, pointsValueSelector, models.CategoryPoints)
	}
	if includeCashback {
		appendBlocks(cashbackBlockSelector, cashbackValueSelector, models.CategoryCashback)
	}

	return promotions, nil
}
