package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"promo_scraper/internal/models"
)

func testResult() *models.CollectionResult {
	direct := "https://loja.test/?ref=portal"
	validUntil := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	return &models.CollectionResult{
		Promotions: []models.Promotion{
			{
				Store:      "Americanas",
				Program:    "Livelo",
				Value:      "8 pts/R$",
				Category:   models.CategoryPoints,
				DirectURL:  &direct,
				ValidUntil: &validUntil,
			},
			{
				Store:    "Renner",
				Program:  "Méliuz",
				Value:    "5%",
				Category: models.CategoryCashback,
			},
		},
		BonusPromotions: []models.BonusPromotion{
			{Title: "Transfira seus pontos na promoção: Itaú e Smiles e ganhe até 30% de bônus"},
		},
		CollectedAt: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFormatTextFullDigest(t *testing.T) {
	out := FormatText(testResult())

	assert.True(t, strings.HasPrefix(out, "PROMOÇÕES DO DIA ATUALIZADAS (01/09/2025):"))
	assert.Contains(t, out, "PROMOÇÕES DE PONTOS E CASHBACK:")
	assert.Contains(t, out, "👉 Americanas: 8 pts/R$ (Livelo)")
	assert.Contains(t, out, "Válido até: 15/10/2025")
	assert.Contains(t, out, "Link: https://loja.test/?ref=portal")
	assert.Contains(t, out, "PROMOÇÕES BONIFICADAS:")
	assert.True(t, strings.HasSuffix(out, digestDisclaimer))
}

func TestFormatTextOmitsValidityAndLinkWhenUnknown(t *testing.T) {
	out := FormatText(testResult())

	// The Renner entry resolved nothing, so its block is a single line.
	assert.Contains(t, out, "👉 Renner: 5% (Méliuz)\n\n")
}

func TestFormatTextOmitsEmptyBonusSection(t *testing.T) {
	result := testResult()
	result.BonusPromotions = nil

	out := FormatText(result)
	assert.NotContains(t, out, "PROMOÇÕES BONIFICADAS:")
}

func TestFormatTextOmitsEmptyPromotionsSection(t *testing.T) {
	result := testResult()
	result.Promotions = nil

	out := FormatText(result)
	assert.NotContains(t, out, "PROMOÇÕES DE PONTOS E CASHBACK:")
	assert.Contains(t, out, "PROMOÇÕES BONIFICADAS:")
}

func TestFormatDelegatesToText(t *testing.T) {
	result := testResult()
	assert.Equal(t, FormatText(result), Format(result, "text"))
	assert.Equal(t, FormatText(result), Format(result, "html"))
}
