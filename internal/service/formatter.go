package service

import (
	"fmt"
	"strings"

	"promo_scraper/internal/models"
)

const digestDisclaimer = "Consulte o regulamento, produtos elegíveis e demais condições de cada um dos parceiros."

// Format renders a collection result in the requested style. Only the text
// style exists today; unknown styles fall back to it.
func Format(result *models.CollectionResult, style string) string {
	switch style {
	case "text":
		return FormatText(result)
	default:
		return FormatText(result)
	}
}

// FormatText renders the result as a distributable pt-BR digest: a dated
// header, the points/cashback section, the bonus section, and a disclaimer.
// Sections with zero entries are omitted entirely.
func FormatText(result *models.CollectionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PROMOÇÕES DO DIA ATUALIZADAS (%s):\n\n", result.CollectedAt.Format("02/01/2006"))

	if len(result.Promotions) > 0 {
		b.WriteString("PROMOÇÕES DE PONTOS E CASHBACK:\n\n")
		for _, promo := range result.Promotions {
			fmt.Fprintf(&b, "👉 %s: %s (%s)\n", promo.Store, promo.Value, promo.Program)
			if promo.ValidUntil != nil {
				fmt.Fprintf(&b, "   Válido até: %s\n", promo.ValidUntil.Format("02/01/2006"))
			}
			if promo.DirectURL != nil {
				fmt.Fprintf(&b, "   Link: %s\n", *promo.DirectURL)
			}
			b.WriteString("\n")
		}
	}

	if len(result.BonusPromotions) > 0 {
		b.WriteString("PROMOÇÕES BONIFICADAS:\n\n")
		for _, promo := range result.BonusPromotions {
			fmt.Fprintf(&b, "👉 %s\n", promo.Title)
			if promo.ValidUntil != nil {
				fmt.Fprintf(&b, "   Válido até: %s\n", promo.ValidUntil.Format("02/01/2006"))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(digestDisclaimer)
	return b.String()
}
