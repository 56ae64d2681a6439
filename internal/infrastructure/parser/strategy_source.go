package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
	"NewsAnalyzer/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Collect runs every site's scanner. A failing site does not stop the others;
// the refs gathered so far are returned together with the joined site errors.
func (s *StrategySource) Collect(ctx context.Context) ([]domain.ArticleRef, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("collect", "sites", len(s.sites))

	var (
		aggregated []domain.ArticleRef
		errs       []error
	)
	for _, site := range s.sites {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "categories", len(site.Categories))
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			errs = append(errs, fmt.Errorf("site %s: %w", site.Name, err))
			continue
		}

		req := scanner.Request{
			SiteName:   site.Name,
			Limit:      site.Limit,
			Options:    site.Options,
			Categories: toScannerCategories(site.Categories),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("scan site %s: %w", site.Name, err))
		}

		s.debug("site produced refs", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_refs", len(aggregated), "failed_sites", len(errs))
	return aggregated, errors.Join(errs...)
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
