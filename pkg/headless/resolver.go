package headless

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DataHenHQ/useragent"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"promo_scraper/internal/models"
	"promo_scraper/internal/parser"
)

// Default settings for headless browser operation.
const (
	DefaultNavTimeout = 45 * time.Second
	settleBuffer      = 2 * time.Second
)

// CTAPhrases are the known "go to store" wordings on promotion pages, longest
// first so the most specific phrase is reported in logs.
var CTAPhrases = []string{
	"Ir para o site",
	"Ir para loja",
	"Ir para",
}

// browserSession drives one promotion page through its redirect flow. The
// chromedp implementation is the only production one; tests substitute their
// own to exercise the recovery paths without a browser.
type browserSession interface {
	navigate(url string) error
	findCTA() (int, error)
	clickThrough() (finalURL, content string, err error)
}

// sessionFactory opens a session bounded by ctx. The returned cancel tears the
// session down and must be called on every exit path.
type sessionFactory func(ctx context.Context, userAgent string) (browserSession, context.CancelFunc, error)

// Resolver follows a promotion's in-page redirect flow through an isolated
// headless browser session and captures the final merchant URL plus any
// validity text on the destination page.
type Resolver struct {
	navTimeout  time.Duration
	logger      *zap.Logger
	openSession sessionFactory
}

// NewResolver builds a resolver with the given default per-navigation timeout.
func NewResolver(navTimeout time.Duration, logger *zap.Logger) *Resolver {
	if navTimeout <= 0 {
		navTimeout = DefaultNavTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		navTimeout:  navTimeout,
		logger:      logger,
		openSession: newChromedpSession,
	}
}

// Resolve opens a dedicated browser session for the promotion, clicks its
// call-to-action, and returns the promotion with DirectURL/ValidUntil filled.
// A non-positive navTimeout falls back to the resolver's default. No matching
// call-to-action, a navigation timeout, or any automation failure returns the
// promotion unchanged; these are recoverable outcomes, not errors. The session
// is torn down on every exit path and never reused.
func (r *Resolver) Resolve(parentCtx context.Context, promo models.Promotion, navTimeout time.Duration) models.Promotion {
	if navTimeout <= 0 {
		navTimeout = r.navTimeout
	}

	ua, err := useragent.Desktop()
	if err != nil {
		r.logger.Warn("could not generate random UA", zap.Error(err))
		return promo
	}

	// Bound the whole session, not just individual steps.
	ctx, cancel := context.WithTimeout(parentCtx, navTimeout)
	defer cancel()

	session, teardown, err := r.openSession(ctx, ua)
	if err != nil {
		r.logger.Warn("browser session start failed",
			zap.String("store", promo.Store), zap.Error(err))
		return promo
	}
	defer teardown()

	if err := session.navigate(promo.URL); err != nil {
		r.logger.Warn("promotion page navigation failed",
			zap.String("store", promo.Store), zap.String("url", promo.URL), zap.Error(err))
		return promo
	}

	count, err := session.findCTA()
	if err != nil {
		r.logger.Warn("call-to-action lookup failed",
			zap.String("store", promo.Store), zap.Error(err))
		return promo
	}
	if count == 0 {
		r.logger.Debug("no call-to-action on promotion page",
			zap.String("store", promo.Store), zap.String("url", promo.URL))
		return promo
	}

	finalURL, content, err := session.clickThrough()
	if err != nil {
		r.logger.Warn("call-to-action navigation failed",
			zap.String("store", promo.Store), zap.Error(err))
		return promo
	}

	// The landing URL counts as resolved even when the click loops back to
	// the promotion page itself.
	if finalURL != "" {
		promo.DirectURL = &finalURL
	}
	if date, ok := parser.ExtractDate(content); ok {
		promo.ValidUntil = &date
	}

	return promo
}

// chromedpSession is the production browserSession over an isolated Chrome
// process with the usual automation-evasion flags.
type chromedpSession struct {
	ctx   context.Context
	nodes []*cdp.Node
}

func newChromedpSession(ctx context.Context, userAgent string) (browserSession, context.CancelFunc, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.Headless,
		chromedp.WindowSize(1920, 1080),

		// Core Evasion Flags
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),

		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("no-first-run", true),

		// CRITICAL for local/Docker environments:
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("no-zygote", true),
		chromedp.Flag("single-process", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	chromeCtx, cancelChrome := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelChrome()
		cancelAlloc()
	}
	return &chromedpSession{ctx: chromeCtx}, cancel, nil
}

func (s *chromedpSession) navigate(url string) error {
	return chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.Evaluate(`Object.defineProperty(navigator, 'webdriver', {get: () => false, configurable: true});`, nil),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromedpSession) findCTA() (int, error) {
	if err := chromedp.Run(s.ctx,
		chromedp.Nodes(ctaSelector(), &s.nodes, chromedp.BySearch, chromedp.AtLeast(0)),
	); err != nil {
		return 0, err
	}
	return len(s.nodes), nil
}

func (s *chromedpSession) clickThrough() (string, string, error) {
	var finalURL, content string
	err := chromedp.Run(s.ctx,
		chromedp.MouseClickNode(s.nodes[0]),
		chromedp.Sleep(settleBuffer),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &content, chromedp.ByQuery),
	)
	return finalURL, content, err
}

// ctaSelector builds an XPath matching any anchor whose visible text carries
// one of the known call-to-action phrases.
func ctaSelector() string {
	conditions := make([]string, len(CTAPhrases))
	for i, phrase := range CTAPhrases {
		conditions[i] = fmt.Sprintf("contains(., %q)", phrase)
	}
	return "//a[" + strings.Join(conditions, " or ") + "]"
}
