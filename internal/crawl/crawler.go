package crawl

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadspider-cli/internal/config"
	"github.com/sells-group/leadspider-cli/internal/extract"
	"github.com/sells-group/leadspider-cli/internal/model"
)

const (
	ctxKeyRole    = "role"
	ctxKeyCompany = "company"
	ctxKeyStart   = "start"
)

// LandingMeta carries the DOM-derived facts only a landing page has:
// the html lang attribute, the lowercased img alt/src values the payment
// matcher runs over, and the harvested webshop and social links.
type LandingMeta struct {
	Language    string
	ImageWords  []string
	WebshopURLs []string
	SocialLinks []string
}

// Visit is one fetched page plus its landing metadata. Meta is nil for
// product and contact pages.
type Visit struct {
	Page model.Page
	Meta *LandingMeta
}

// Sink receives visits as they complete. The crawler runs requests in
// parallel, so implementations must be safe for concurrent calls.
type Sink func(Visit) error

// Crawler fetches company landing pages, follows same-host product and
// contact links, and hands every fetched page to a Sink. Each page is a
// fresh immutable value; nothing is shared or mutated after emission.
type Crawler struct {
	cfg       config.CrawlConfig
	links     *LinkClassifier
	collector *colly.Collector
	Metrics   *Metrics

	runMu sync.Mutex

	mu       sync.Mutex
	ctx      context.Context
	sink     Sink
	subPages map[model.CompanyID]int

	handlersOnce sync.Once
}

// New builds a crawler from config. The lexicon supplies the anchor
// texts that mark webshop links.
func New(cfg config.CrawlConfig, lex config.LexiconConfig) (*Crawler, error) {
	collector := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	collector.SetRequestTimeout(time.Duration(cfg.TimeoutSecs) * time.Second)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
	}); err != nil {
		return nil, eris.Wrap(err, "crawl: configure rate limits")
	}

	return &Crawler{
		cfg:       cfg,
		links:     NewLinkClassifier(lex.WebshopLinkWords),
		collector: collector,
		Metrics:   NewMetrics(),
	}, nil
}

// WithTransport sets the HTTP transport used for all crawl requests.
func (c *Crawler) WithTransport(rt http.RoundTripper) {
	c.collector.WithTransport(rt)
}

// Run visits every start URL as a company landing page and blocks until
// all follow-up requests have completed. Failed start URLs are counted
// and logged, not fatal; a crawl run is only an error when every single
// start URL was rejected before a request went out. Runs share one
// collector and execute one at a time; a concurrent Run blocks until
// the earlier one has drained.
func (c *Crawler) Run(ctx context.Context, startURLs []string, sink Sink) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.mu.Lock()
	c.ctx = ctx
	c.sink = sink
	c.subPages = make(map[model.CompanyID]int, len(startURLs))
	c.mu.Unlock()

	c.configureHandlers()

	start := time.Now()
	issued := 0
	for _, u := range startURLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		rctx := colly.NewContext()
		rctx.Put(ctxKeyRole, string(model.RoleLanding))
		rctx.Put(ctxKeyCompany, u)
		if err := c.collector.Request("GET", u, nil, rctx, nil); err != nil {
			zap.L().Warn("crawl: start url rejected",
				zap.String("url", u),
				zap.Error(err))
			continue
		}
		issued++
	}
	if issued == 0 {
		return eris.New("crawl: no start urls could be visited")
	}

	c.collector.Wait()

	zap.L().Info("crawl finished",
		zap.Int("start_urls", issued),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// configureHandlers registers the collector callbacks once. The
// callbacks read the current run's context and sink through runState,
// never captured values, so every Run sees its own.
func (c *Crawler) configureHandlers() {
	c.handlersOnce.Do(func() {
		c.collector.OnRequest(func(r *colly.Request) {
			ctx, _ := c.runState()
			if ctx.Err() != nil {
				r.Abort()
				return
			}
			r.Ctx.Put(ctxKeyStart, time.Now())
			c.Metrics.IncRequest("started")
		})

		c.collector.OnResponse(func(r *colly.Response) {
			if start, ok := r.Ctx.GetAny(ctxKeyStart).(time.Time); ok {
				c.Metrics.ObserveDuration(time.Since(start))
			}
			role := model.PageRole(r.Ctx.Get(ctxKeyRole))
			if role == model.RoleLanding {
				// Landing pages are emitted from the html handler,
				// where the DOM is available for link harvesting.
				return
			}
			c.emit(Visit{
				Page: model.Page{
					Company: model.CompanyID(r.Ctx.Get(ctxKeyCompany)),
					URL:     r.Request.URL.String(),
					Role:    role,
					Body:    extract.DecodeBody(r.Body),
				},
			})
		})

		c.collector.OnError(func(r *colly.Response, err error) {
			status := 0
			pageURL := ""
			if r != nil {
				status = r.StatusCode
				if r.Request != nil && r.Request.URL != nil {
					pageURL = r.Request.URL.String()
				}
			}
			category := errorCategory(err, status)
			c.Metrics.IncError(category)
			zap.L().Error("crawl: request failed",
				zap.String("url", pageURL),
				zap.String("category", category),
				zap.Error(err))
		})

		c.collector.OnHTML("html", func(e *colly.HTMLElement) {
			if e.Request.Ctx.Get(ctxKeyRole) != string(model.RoleLanding) {
				return
			}
			company := model.CompanyID(e.Request.Ctx.Get(ctxKeyCompany))
			pageURL := e.Request.URL.String()

			meta := &LandingMeta{
				Language:   e.Attr("lang"),
				ImageWords: imageWords(e),
			}

			webshop := map[string]struct{}{}
			social := map[string]struct{}{}
			e.ForEach("a[href]", func(_ int, a *colly.HTMLElement) {
				link := a.Request.AbsoluteURL(a.Attr("href"))
				if link == "" {
					return
				}
				if c.links.IsSocial(link) {
					if _, dup := social[link]; !dup {
						social[link] = struct{}{}
						meta.SocialLinks = append(meta.SocialLinks, link)
					}
				}
				if c.links.IsWebshop(pageURL, link, a.Text) {
					if _, dup := webshop[link]; !dup {
						webshop[link] = struct{}{}
						meta.WebshopURLs = append(meta.WebshopURLs, link)
					}
				}
				if role, ok := c.links.SubPageRole(pageURL, link); ok {
					c.enqueue(company, link, role)
				}
			})

			c.emit(Visit{
				Page: model.Page{
					Company: company,
					URL:     pageURL,
					Role:    model.RoleLanding,
					Body:    extract.DecodeBody(e.Response.Body),
				},
				Meta: meta,
			})
		})
	})
}

// enqueue schedules a product or contact sub-page fetch, respecting the
// per-company cap.
func (c *Crawler) enqueue(company model.CompanyID, link string, role model.PageRole) {
	c.mu.Lock()
	if c.cfg.MaxSubPages > 0 && c.subPages[company] >= c.cfg.MaxSubPages {
		c.mu.Unlock()
		return
	}
	c.subPages[company]++
	c.mu.Unlock()

	rctx := colly.NewContext()
	rctx.Put(ctxKeyRole, string(role))
	rctx.Put(ctxKeyCompany, string(company))
	if err := c.collector.Request("GET", link, nil, rctx, nil); err != nil {
		zap.L().Debug("crawl: sub-page skipped",
			zap.String("url", link),
			zap.Error(err))
	}
}

func (c *Crawler) runState() (context.Context, Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx, c.sink
}

func (c *Crawler) emit(v Visit) {
	_, sink := c.runState()
	c.Metrics.IncPage(string(v.Page.Role))
	if err := sink(v); err != nil {
		zap.L().Error("crawl: sink rejected page",
			zap.String("url", v.Page.URL),
			zap.String("role", string(v.Page.Role)),
			zap.Error(err))
	}
}

// imageWords collects lowercased, non-empty img alt and src values.
func imageWords(e *colly.HTMLElement) []string {
	var words []string
	for _, attr := range []string{"alt", "src"} {
		for _, w := range e.ChildAttrs("img", attr) {
			if w == "" {
				continue
			}
			words = append(words, strings.ToLower(w))
		}
	}
	return words
}
