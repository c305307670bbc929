package parser

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateFullForm(t *testing.T) {
	date, ok := ParseDate("15/03/2024")
	require.True(t, ok)
	assert.Equal(t, "2024-03-15", date.Format("2006-01-02"))
}

func TestParseDateShortFormAssumesCurrentYear(t *testing.T) {
	date, ok := ParseDate("05/07")
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("%d-07-05", time.Now().Year()), date.Format("2006-01-02"))
}

func TestParseDateRejectsImpossibleCalendarDate(t *testing.T) {
	// 31/02 must be rejected, not rolled over to March.
	_, ok := ParseDate("31/02/2024")
	assert.False(t, ok)
}

func TestParseDateAcceptsEmbeddedDate(t *testing.T) {
	// Validity text keeps its surrounding words; the embedded date still parses.
	date, ok := ParseDate("validade: 15/03/2024.")
	require.True(t, ok)
	assert.Equal(t, "2024-03-15", date.Format("2006-01-02"))
}

func TestParseDateRejectsOtherShapes(t *testing.T) {
	for _, input := range []string{"", "2024-03-15", "amanhã", "1/3/2024"} {
		_, ok := ParseDate(input)
		assert.Falsef(t, ok, "input %q should not parse", input)
	}
}

func TestExtractDateChecksPatternsInOrder(t *testing.T) {
	text := "A oferta expira em 01/05/2025. Cupom válido até 10/04/2025."
	date, ok := ExtractDate(text)
	require.True(t, ok)
	assert.Equal(t, "2025-04-10", date.Format("2006-01-02"))
}

func TestExtractDateHandlesAllPhrasings(t *testing.T) {
	cases := map[string]string{
		"promoção válido até 10/04/2025": "2025-04-10",
		"validade: 22/08/2025":           "2025-08-22",
		"o cupom expira em 01/12/2025":   "2025-12-01",
	}
	for text, want := range cases {
		date, ok := ExtractDate(text)
		require.Truef(t, ok, "text %q", text)
		assert.Equal(t, want, date.Format("2006-01-02"))
	}
}

func TestExtractDateShortForm(t *testing.T) {
	date, ok := ExtractDate("Oferta válido até 20/11, aproveite")
	require.True(t, ok)
	assert.Equal(t, fmt.Sprintf("%d-11-20", time.Now().Year()), date.Format("2006-01-02"))
}

func TestExtractDateNoMatch(t *testing.T) {
	_, ok := ExtractDate("nenhuma data por aqui")
	assert.False(t, ok)
}
