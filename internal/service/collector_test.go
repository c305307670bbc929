package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promo_scraper/internal/models"
)

const baseURL = "https://portal.test"

// stubPortal serves canned pages per URL and records what was fetched.
type stubPortal struct {
	pages   map[string]string
	errs    map[string]error
	fetched []string
}

func (s *stubPortal) Fetch(_ context.Context, url string) (io.Reader, error) {
	s.fetched = append(s.fetched, url)
	if err := s.errs[url]; err != nil {
		return nil, err
	}
	page, ok := s.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return strings.NewReader(page), nil
}

// stubResolver marks every promotion as resolved without a browser.
type stubResolver struct {
	calls    int
	timeouts []time.Duration
}

func (s *stubResolver) Resolve(_ context.Context, promo models.Promotion, navTimeout time.Duration) models.Promotion {
	s.calls++
	s.timeouts = append(s.timeouts, navTimeout)
	direct := promo.URL + "#resolved"
	promo.DirectURL = &direct
	return promo
}

func partnerPage(program, value string) string {
	return fmt.Sprintf(`<html><body>
  <div class="cashback">
    <span class="programa-nome">%s</span>
    <span class="cashback-valor">%s</span>
  </div>
</body></html>`, program, value)
}

func homePage(stores ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, store := range stores {
		fmt.Fprintf(&b, `<a href="/cashback-loja-%s">%s</a>`, strings.ToLower(store), store)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func storeURL(store string) string {
	return baseURL + "/cashback-loja-" + strings.ToLower(store)
}

func TestRunIsolatesPartnerFailure(t *testing.T) {
	portal := &stubPortal{
		pages: map[string]string{
			baseURL:          homePage("Alfa", "Beta", "Gama"),
			storeURL("Alfa"): partnerPage("Méliuz", "3%"),
			storeURL("Gama"): partnerPage("Méliuz", "7%"),
		},
		errs: map[string]error{
			storeURL("Beta"): fmt.Errorf("connection refused"),
		},
	}
	resolver := &stubResolver{}
	collector := NewCollectorService(portal, resolver, baseURL, nil)

	opts := DefaultOptions()
	opts.IncludeBonusPromotions = false

	result, err := collector.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, result.Promotions, 2)
	assert.Equal(t, "Alfa", result.Promotions[0].Store)
	assert.Equal(t, "Gama", result.Promotions[1].Store)
	assert.Equal(t, 2, resolver.calls)
}

func TestRunCapsPartnersAtMaxStores(t *testing.T) {
	stores := []string{"S1", "S2", "S3", "S4", "S5", "S6", "S7", "S8", "S9", "S10"}
	pages := map[string]string{baseURL: homePage(stores...)}
	for _, store := range stores {
		pages[storeURL(store)] = partnerPage("Livelo", "1 pt/R$")
	}
	portal := &stubPortal{pages: pages}
	collector := NewCollectorService(portal, &stubResolver{}, baseURL, nil)

	opts := DefaultOptions()
	opts.MaxStores = 2
	opts.IncludeBonusPromotions = false

	result, err := collector.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, result.Promotions, 2)
	// home page + exactly two partner pages
	assert.Len(t, portal.fetched, 3)
}

func TestRunSkipsPartnerFetchWhenAllCategoriesExcluded(t *testing.T) {
	portal := &stubPortal{
		pages: map[string]string{baseURL: homePage("Alfa")},
	}
	collector := NewCollectorService(portal, &stubResolver{}, baseURL, nil)

	result, err := collector.Run(context.Background(), Options{
		IncludePointsPrograms:   false,
		IncludeCashbackPrograms: false,
		IncludeBonusPromotions:  false,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Promotions)
	// only the home page was ever requested
	assert.Equal(t, []string{baseURL}, portal.fetched)
}

func TestRunToleratesDiscoveryFailure(t *testing.T) {
	portal := &stubPortal{
		errs: map[string]error{baseURL: fmt.Errorf("portal down")},
	}
	collector := NewCollectorService(portal, &stubResolver{}, baseURL, nil)

	result, err := collector.Run(context.Background(), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, result.Promotions)
	assert.False(t, result.CollectedAt.IsZero())
}

func TestRunCollectsBonusPromotions(t *testing.T) {
	bonusHTML := `<html><body>
  <div class="promocao-bonificada">
    <h3 class="promocao-titulo">Transfira seus pontos na promoção: Itaú e TudoAzul e ganhe até 30% de bônus</h3>
    <span class="promocao-validade">20/12/2025</span>
  </div>
</body></html>`
	portal := &stubPortal{
		pages: map[string]string{
			baseURL:                       homePage(),
			baseURL + bonusPromotionsPath: bonusHTML,
		},
	}
	collector := NewCollectorService(portal, &stubResolver{}, baseURL, nil)

	result, err := collector.Run(context.Background(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.BonusPromotions, 1)
	assert.Equal(t, "TudoAzul", result.BonusPromotions[0].ToProgram)
}

func TestRunSkipsBonusWhenDisabled(t *testing.T) {
	portal := &stubPortal{
		pages: map[string]string{baseURL: homePage()},
	}
	collector := NewCollectorService(portal, &stubResolver{}, baseURL, nil)

	opts := DefaultOptions()
	opts.IncludeBonusPromotions = false

	result, err := collector.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Empty(t, result.BonusPromotions)
	assert.Equal(t, []string{baseURL}, portal.fetched)
}

func TestRunForwardsNavTimeoutToResolver(t *testing.T) {
	portal := &stubPortal{
		pages: map[string]string{
			baseURL:          homePage("Alfa"),
			storeURL("Alfa"): partnerPage("Méliuz", "3%"),
		},
	}
	resolver := &stubResolver{}
	collector := NewCollectorService(portal, resolver, baseURL, nil)

	opts := DefaultOptions()
	opts.IncludeBonusPromotions = false
	opts.NavTimeout = 20 * time.Second

	_, err := collector.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, resolver.timeouts, 1)
	assert.Equal(t, 20*time.Second, resolver.timeouts[0])
}

func TestRunNeverEmitsProductOffers(t *testing.T) {
	portal := &stubPortal{
		pages: map[string]string{
			baseURL:          homePage("Alfa"),
			storeURL("Alfa"): partnerPage("Méliuz", "3%"),
		},
	}
	collector := NewCollectorService(portal, &stubResolver{}, baseURL, nil)

	opts := DefaultOptions()
	opts.IncludeBonusPromotions = false

	result, err := collector.Run(context.Background(), opts)
	require.NoError(t, err)
	for _, promo := range result.Promotions {
		assert.False(t, promo.IsProduct)
	}
}
