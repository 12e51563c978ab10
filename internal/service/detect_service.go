// Package service coordinates the domain layers: ingestion sinks, detection
// runs over the price snapshot, and status aggregation.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/linescout/linescout/internal/detect"
	"github.com/linescout/linescout/internal/domain"
	"github.com/linescout/linescout/internal/match"
	"github.com/linescout/linescout/internal/notify"
	"github.com/linescout/linescout/internal/report"
)

// AllCategories is every detection category in run order.
var AllCategories = []domain.OpportunityCategory{
	domain.ArbOpenMarket,
	domain.ArbSportsbook,
	domain.ArbCross,
	domain.ArbPlayerProp,
	domain.MiddleSportsbook,
	domain.MiddleOpenMarket,
	domain.MiddleCross,
	domain.MiddlePlayerProp,
}

// arbVariants maps arbitrage categories to their detector variant.
var arbVariants = map[domain.OpportunityCategory]detect.ArbVariant{
	domain.ArbOpenMarket: detect.ArbVariantOpen,
	domain.ArbSportsbook: detect.ArbVariantSportsbook,
	domain.ArbCross:      detect.ArbVariantCross,
	domain.ArbPlayerProp: detect.ArbVariantProps,
}

// middleVariants maps middle categories to their detector variant.
var middleVariants = map[domain.OpportunityCategory]detect.MiddleVariant{
	domain.MiddleSportsbook: detect.MiddleVariantSportsbook,
	domain.MiddleOpenMarket: detect.MiddleVariantOpen,
	domain.MiddleCross:      detect.MiddleVariantCross,
	domain.MiddlePlayerProp: detect.MiddleVariantProps,
}

// DetectService runs the full detection pass: snapshot, match, detect per
// category, persist, publish, and cache run summaries. Each run reads one
// snapshot and produces an independent result set.
type DetectService struct {
	prices       domain.PriceStore
	opps         domain.OpportunityStore
	matcher      *match.Matcher
	arb          *detect.ArbDetector
	middles      *detect.MiddleDetector
	bus          domain.SignalBus
	runs         domain.RunCache
	notifier     *notify.Notifier
	propsEnabled bool
	logger       *slog.Logger
}

// NewDetectService creates a DetectService with all required dependencies.
// bus, runs, and notifier may be nil; the corresponding side effects are
// skipped.
func NewDetectService(
	prices domain.PriceStore,
	opps domain.OpportunityStore,
	matcher *match.Matcher,
	arb *detect.ArbDetector,
	middles *detect.MiddleDetector,
	bus domain.SignalBus,
	runs domain.RunCache,
	notifier *notify.Notifier,
	propsEnabled bool,
	logger *slog.Logger,
) *DetectService {
	return &DetectService{
		prices:       prices,
		opps:         opps,
		matcher:      matcher,
		arb:          arb,
		middles:      middles,
		bus:          bus,
		runs:         runs,
		notifier:     notifier,
		propsEnabled: propsEnabled,
		logger:       logger.With(slog.String("component", "detect_service")),
	}
}

// categoryTokens maps the CLI's short single-category tokens onto categories.
// The full category names are accepted too, below.
var categoryTokens = map[string]domain.OpportunityCategory{
	"open":         domain.ArbOpenMarket,
	"sportsbook":   domain.ArbSportsbook,
	"cross":        domain.ArbCross,
	"props":        domain.ArbPlayerProp,
	"middle-sb":    domain.MiddleSportsbook,
	"middle-open":  domain.MiddleOpenMarket,
	"middle-cross": domain.MiddleCross,
	"middle-props": domain.MiddlePlayerProp,
}

// ParseCategory resolves a CLI category argument: a single category token or
// full name, the "arbitrage"/"middles" group aliases, or empty for every
// category.
func ParseCategory(arg string) ([]domain.OpportunityCategory, error) {
	switch arg {
	case "", "all":
		return AllCategories, nil
	case "arbitrage":
		return AllCategories[:4], nil
	case "middles":
		return AllCategories[4:], nil
	}
	if c, ok := categoryTokens[arg]; ok {
		return []domain.OpportunityCategory{c}, nil
	}
	c := domain.OpportunityCategory(arg)
	if _, ok := arbVariants[c]; ok {
		return []domain.OpportunityCategory{c}, nil
	}
	if _, ok := middleVariants[c]; ok {
		return []domain.OpportunityCategory{c}, nil
	}
	return nil, fmt.Errorf("service: unknown category %q", arg)
}

// Run executes one detection pass over the requested categories and returns
// everything found. Failures in one category's side effects (publish, cache)
// are logged and do not abort the remaining categories; store failures do.
func (s *DetectService) Run(ctx context.Context, categories []domain.OpportunityCategory) ([]domain.Opportunity, error) {
	snapshot, err := s.prices.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: detect snapshot: %w", err)
	}

	now := time.Now().UTC()
	groups := s.matcher.Groups(snapshot, now)

	s.logger.InfoContext(ctx, "detection pass started",
		slog.Int("observations", len(snapshot)),
		slog.Int("groups", len(groups)),
		slog.Int("categories", len(categories)),
	)

	var all []domain.Opportunity
	for _, category := range categories {
		if (category == domain.ArbPlayerProp || category == domain.MiddlePlayerProp) && !s.propsEnabled {
			continue
		}

		var found []domain.Opportunity
		if v, ok := arbVariants[category]; ok {
			found = s.arb.Detect(groups, v, now)
		} else if v, ok := middleVariants[category]; ok {
			found = s.middles.Detect(groups, v, now)
		} else {
			return nil, fmt.Errorf("service: unknown category %q", category)
		}

		if err := s.record(ctx, category, found, now); err != nil {
			return nil, err
		}
		all = append(all, found...)
	}

	s.logger.InfoContext(ctx, "detection pass complete",
		slog.Int("opportunities", len(all)),
	)
	return all, nil
}

// record persists one category's results and fans them out to the signal bus,
// run cache, and notifier.
func (s *DetectService) record(ctx context.Context, category domain.OpportunityCategory, found []domain.Opportunity, now time.Time) error {
	if err := s.opps.InsertBatch(ctx, found); err != nil {
		return fmt.Errorf("service: store opportunities for %s: %w", category, err)
	}

	if s.runs != nil {
		summary := domain.RunSummary{Category: category, Count: len(found), RunAt: now}
		if err := s.runs.SetSummary(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "run summary cache failed",
				slog.String("category", string(category)),
				slog.String("error", err.Error()),
			)
		}
	}

	if len(found) == 0 {
		return nil
	}

	s.logger.InfoContext(ctx, "opportunities detected",
		slog.String("category", string(category)),
		slog.Int("count", len(found)),
	)

	if s.bus != nil {
		payload, err := json.Marshal(found)
		if err == nil {
			if err := s.bus.Publish(ctx, "opportunities:"+string(category), payload); err != nil {
				s.logger.WarnContext(ctx, "signal publish failed",
					slog.String("category", string(category)),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if s.notifier != nil {
		title := fmt.Sprintf("%d %s opportunities", len(found), category)
		if err := s.notifier.Notify(ctx, notify.EventOpportunity, title, report.RenderOpportunities(found)); err != nil {
			s.logger.WarnContext(ctx, "notify failed",
				slog.String("category", string(category)),
				slog.String("error", err.Error()),
			)
		}
	}

	return nil
}
