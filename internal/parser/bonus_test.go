package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bonusPageHTML = `
<html><body>
  <div class="promocao-bonificada">
    <h3 class="promocao-titulo">Transfira seus pontos na promoção: Itaú e LATAM Pass e ganhe até 40% de bônus</h3>
    <span class="promocao-validade">15/10/2025</span>
  </div>
  <div class="promocao-bonificada">
    <h3 class="promocao-titulo"></h3>
    <span class="promocao-validade">01/11/2025</span>
  </div>
  <div class="promocao-bonificada">
    <h3 class="promocao-titulo">Oferta relâmpago de transferência</h3>
  </div>
</body></html>`

func TestParseBonusPromotions(t *testing.T) {
	promotions, err := ParseBonusPromotions(strings.NewReader(bonusPageHTML))
	require.NoError(t, err)
	require.Len(t, promotions, 2)

	first := promotions[0]
	assert.Equal(t, "Itaú", first.FromProgram)
	assert.Equal(t, "LATAM Pass", first.ToProgram)
	assert.Equal(t, "40%", first.BonusValue)
	require.NotNil(t, first.ValidUntil)
	assert.Equal(t, "2025-10-15", first.ValidUntil.Format("2006-01-02"))

	// Titles outside the usual wording still produce an entry; only the
	// parsed fields stay empty.
	second := promotions[1]
	assert.Equal(t, "Oferta relâmpago de transferência", second.Title)
	assert.Empty(t, second.FromProgram)
	assert.Nil(t, second.ValidUntil)
}

func TestParseBonusPromotionsEmptyPage(t *testing.T) {
	promotions, err := ParseBonusPromotions(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, promotions)
}
