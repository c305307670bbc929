package parser

import (
	"regexp"
	"strings"

	"promo_scraper/internal/models"
)

// --- Regular Expressions (bonus transfer titles) ---
// Titles follow the pattern "Transfira seus pontos na promoção: <origem> e
// <destino> e ganhe até <N>% de bônus". Each field is pulled independently so
// a title that deviates still yields whatever fields do match.
var (
	fromProgramRegex = regexp.MustCompile(`(?i)promoção: ([^e]+) e`)
	toProgramRegex   = regexp.MustCompile(`(?i)e ([^e]+) e ganhe`)
	bonusValueRegex  = regexp.MustCompile(`(?i)ganhe até (\d+)% de bônus`)
)

// ParseBonusTitle extracts the source program, destination program, and bonus
// percentage from a bonus promotion title. Fields whose pattern does not
// match stay empty; partial extraction is expected and not an error.
func ParseBonusTitle(title string) models.BonusPromotion {
	promo := models.BonusPromotion{Title: title}

	if match := fromProgramRegex.FindStringSubmatch(title); len(match) > 1 {
		promo.FromProgram = strings.TrimSpace(match[1])
	}
	if match := toProgramRegex.FindStringSubmatch(title); len(match) > 1 {
		promo.ToProgram = strings.TrimSpace(match[1])
	}
	if match := bonusValueRegex.FindStringSubmatch(title); len(match) > 1 {
		promo.BonusValue = match[1] + "%"
	}

	return promo
}
