// Package pipeline wires the crawler, the extraction core, the
// fingerprint client and the observation store into end-to-end runs.
package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadspider-cli/internal/config"
	"github.com/sells-group/leadspider-cli/internal/crawl"
	"github.com/sells-group/leadspider-cli/internal/extract"
	"github.com/sells-group/leadspider-cli/internal/model"
	"github.com/sells-group/leadspider-cli/internal/report"
	"github.com/sells-group/leadspider-cli/internal/store"
	"github.com/sells-group/leadspider-cli/pkg/fingerprint"
	"github.com/sells-group/leadspider-cli/pkg/sheets"
)

// Pipeline orchestrates one crawl-and-report cycle.
type Pipeline struct {
	cfg     *config.Config
	store   store.ObservationStore
	crawler *crawl.Crawler
	fp      fingerprint.Client

	pricePat   *extract.PricePattern
	contactPat *extract.ContactPattern

	mu        sync.Mutex
	companies map[model.CompanyID]struct{}
}

// New creates a Pipeline. The lexicon patterns are compiled once here;
// a bad lexicon fails fast instead of failing per page.
func New(cfg *config.Config, st store.ObservationStore, crawler *crawl.Crawler, fp fingerprint.Client) (*Pipeline, error) {
	pricePat, err := extract.CompilePricePattern(cfg.Lexicon.CurrencySymbols)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: compile price pattern")
	}
	contactPat, err := extract.CompileContactPattern(cfg.Lexicon.PhoneCountryCodes)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: compile contact pattern")
	}
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		crawler:    crawler,
		fp:         fp,
		pricePat:   pricePat,
		contactPat: contactPat,
		companies:  make(map[model.CompanyID]struct{}),
	}, nil
}

// Crawl visits all start URLs and persists the resulting observations.
// It returns the number of distinct companies that produced a landing
// page observation.
func (p *Pipeline) Crawl(ctx context.Context, startURLs []string) (int, error) {
	if err := p.crawler.Run(ctx, startURLs, func(v crawl.Visit) error {
		return p.handleVisit(ctx, v)
	}); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.companies), nil
}

// handleVisit routes one fetched page to the extractor matching its
// role. Called concurrently from crawl workers.
func (p *Pipeline) handleVisit(ctx context.Context, v crawl.Visit) error {
	switch v.Page.Role {
	case model.RoleLanding:
		return p.handleLanding(ctx, v)
	case model.RoleProduct:
		return p.handleProduct(ctx, v.Page)
	case model.RoleContact:
		return p.handleContact(ctx, v.Page)
	default:
		return eris.Errorf("pipeline: unknown page role %q", v.Page.Role)
	}
}

func (p *Pipeline) handleLanding(ctx context.Context, v crawl.Visit) error {
	lex := p.cfg.Lexicon
	info := model.GeneralInfo{
		Company:        v.Page.Company,
		WebshopSystems: extract.MatchKeywords(v.Page.Body, lex.WebshopSystems),
		B2BKeywords:    extract.MatchKeywords(v.Page.Body, lex.B2BKeywords),
	}
	if v.Meta != nil {
		info.Language = v.Meta.Language
		info.WebshopURLs = v.Meta.WebshopURLs
		info.SocialLinks = v.Meta.SocialLinks
		info.Payments = extract.MatchKeywords(strings.Join(v.Meta.ImageWords, "\n"), lex.PaymentKeywords)
	}

	// Fingerprinting is best effort: a down service costs the
	// technology columns, not the whole company row.
	techs, err := p.fp.Lookup(ctx, v.Page.URL)
	if err != nil {
		zap.L().Warn("pipeline: fingerprint lookup failed",
			zap.String("url", v.Page.URL),
			zap.Error(err))
	} else {
		entries := make(map[string]extract.TechEntry, len(techs))
		for name, tech := range techs {
			entries[name] = extract.TechEntry{Categories: tech.Categories}
		}
		info.Technologies = extract.NormalizeTechnologies(entries)
	}

	if err := p.store.AppendGeneral(ctx, info); err != nil {
		return err
	}

	p.mu.Lock()
	p.companies[v.Page.Company] = struct{}{}
	p.mu.Unlock()
	return nil
}

func (p *Pipeline) handleProduct(ctx context.Context, page model.Page) error {
	stats, ok := extract.ExtractPrices(page.Body, p.pricePat)
	if !ok {
		// No currency symbol on the page, nothing to record.
		return nil
	}
	return p.store.AppendPrice(ctx, model.PriceSample{
		Company:  page.Company,
		AvgPrice: stats.AvgPrice,
		Quantity: stats.Quantity,
		Currency: stats.Currency,
	})
}

func (p *Pipeline) handleContact(ctx context.Context, page model.Page) error {
	phones, emails := extract.ExtractContacts(page.Body, p.contactPat)
	return p.store.AppendContact(ctx, model.ContactInfo{
		Company:    page.Company,
		SourcePage: page.URL,
		Phones:     phones,
		Emails:     emails,
	})
}

// BuildReport loads the persisted observation tables and reconciles
// them into the final one-row-per-company table. Missing price or
// contact tables read as empty; a missing general-info table is fatal
// because nothing anchors the join without it.
func (p *Pipeline) BuildReport(ctx context.Context) (*report.Table, error) {
	infos, err := p.store.ListGeneral(ctx)
	if err != nil && !eris.Is(err, store.ErrNotFound) {
		return nil, err
	}

	prices, err := p.store.ListPrice(ctx)
	if err != nil {
		if !eris.Is(err, store.ErrNotFound) {
			return nil, err
		}
		prices = nil
	}

	contacts, err := p.store.ListContact(ctx)
	if err != nil {
		if !eris.Is(err, store.ErrNotFound) {
			return nil, err
		}
		contacts = nil
	}

	return report.Build(ctx, infos, prices, contacts)
}

// WriteReport renders the table to the configured CSV path, plus an
// xlsx worksheet when one is configured.
func (p *Pipeline) WriteReport(t *report.Table) error {
	if err := report.WriteCSVFile(t, p.cfg.Report.OutputPath); err != nil {
		return err
	}
	zap.L().Info("report written",
		zap.String("path", p.cfg.Report.OutputPath),
		zap.Int("companies", t.Len()))

	if p.cfg.Report.XLSXPath != "" {
		if err := sheets.WriteReport(p.cfg.Report.XLSXPath, p.cfg.Report.SheetName, t); err != nil {
			return err
		}
		zap.L().Info("report exported",
			zap.String("path", p.cfg.Report.XLSXPath))
	}
	return nil
}

// Run executes crawl, reconciliation and report rendering end to end.
// When the store keeps run records, the crawl is wrapped in one.
func (p *Pipeline) Run(ctx context.Context, startURLs []string) error {
	runStore, tracked := p.store.(store.Store)

	var runID string
	if tracked {
		run, err := runStore.CreateRun(ctx, startURLs)
		if err != nil {
			return eris.Wrap(err, "pipeline: create run")
		}
		runID = run.ID
	}

	companies, err := p.Crawl(ctx, startURLs)
	if err != nil {
		if tracked {
			if finishErr := runStore.FinishRun(ctx, runID, store.RunStatusFailed, companies); finishErr != nil {
				zap.L().Warn("pipeline: finish run", zap.Error(finishErr))
			}
		}
		return err
	}
	if tracked {
		if err := runStore.FinishRun(ctx, runID, store.RunStatusComplete, companies); err != nil {
			zap.L().Warn("pipeline: finish run", zap.Error(err))
		}
	}

	table, err := p.BuildReport(ctx)
	if err != nil {
		return err
	}
	return p.WriteReport(table)
}
