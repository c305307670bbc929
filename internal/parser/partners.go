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
	cashbackMarker = "cashback-"
	pointsMarker   = "pontos-"
)

// ParsePartners scans every anchor on the portal home page and returns the
// partner stores it links to. A link is a partner candidate when its target
// contains the cashback or points section marker; cashback is checked first
// and wins if a path somehow carries both. Partners are deduplicated by name,
// first occurrence keeping its URL and category.
func ParsePartners(reader io.Reader, baseURL string) ([]models.Partner, error) {
	doc, err := html.Parse(reader)
	if err != nil {
		if closer, ok := reader.(io.Closer); ok {
			closer.Close()
		}
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var partners []models.Partner
	seen := make(map[string]bool)

	goquery.NewDocumentFromNode(doc).Find("a").Each(func(i int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}

		var category models.Category
		switch {
		case strings.Contains(href, cashbackMarker):
			category = models.CategoryCashback
		case strings.Contains(href, pointsMarker):
			category = models.CategoryPoints
		default:
			return
		}

		name := strings.TrimSpace(sel.Text())
		if name == "" {
			// Fall back to the last hyphen-delimited segment of the path.
			segments := strings.Split(href, "-")
			name = segments[len(segments)-1]
		}
		if name == "" || seen[name] {
			return
		}
		seen[name] = true

		url := href
		if !strings.HasPrefix(href, "http") {
			url = baseURL + href
		}

		partners = append(partners, models.Partner{
			Name:     name,
			URL:      url,
			Category: category,
		})
	})

	return partners, nil
}
