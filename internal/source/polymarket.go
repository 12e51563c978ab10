package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

// PolymarketConfig configures the Polymarket open-market adapter.
type PolymarketConfig struct {
	BaseURL string   // default https://gamma-api.polymarket.com
	Tags    []string // event tag slugs to scan, e.g. "nba", "nhl"
	Limit   int
}

// Polymarket ingests prediction-market prices from the Gamma API. Prices are
// already fair probabilities, so no de-vig is applied.
type Polymarket struct {
	cfg    PolymarketConfig
	client *http.Client
}

// NewPolymarket creates the Polymarket adapter.
func NewPolymarket(cfg PolymarketConfig) *Polymarket {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://gamma-api.polymarket.com"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	return &Polymarket{cfg: cfg, client: newHTTPClient()}
}

func (a *Polymarket) Name() string                    { return "polymarket" }
func (a *Polymarket) Category() domain.SourceCategory { return domain.CategoryOpenMarket }

// Wire types for the Gamma /events response. Markets embed their outcomes and
// prices as JSON-encoded string arrays.
type gammaEvent struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	StartDate time.Time     `json:"startDate"`
	Markets   []gammaMarket `json:"markets"`
}

type gammaMarket struct {
	ID             string    `json:"id"`
	Question       string    `json:"question"`
	Slug           string    `json:"slug"`
	Outcomes       string    `json:"outcomes"`      // JSON array of names
	OutcomePrices  string    `json:"outcomePrices"` // JSON array of probabilities
	GroupItemTitle string    `json:"groupItemTitle"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Closed         bool      `json:"closed"`
}

// Poll implements Adapter.
func (a *Polymarket) Poll(ctx context.Context) (domain.PollResult, error) {
	res := domain.PollResult{Source: a.Name()}
	now := time.Now().UTC()

	for _, tag := range a.cfg.Tags {
		league := domain.CanonicalLeague(tag)
		params := url.Values{}
		params.Set("tag_slug", tag)
		params.Set("closed", "false")
		params.Set("limit", strconv.Itoa(a.cfg.Limit))

		var events []gammaEvent
		res.APICalls++
		if err := getJSON(ctx, a.client, a.cfg.BaseURL+"/events", params, nil, &events); err != nil {
			return res, fmt.Errorf("polymarket: events tag=%s: %w", tag, err)
		}

		for _, ev := range events {
			home, away, ok := splitMatchup(ev.Title)
			if !ok {
				continue
			}
			eventID := domain.CanonicalEventID(
				ev.StartDate.UTC().Format("2006-01-02"), league, home, away,
			)
			res.Events = append(res.Events, domain.Event{
				ID:           eventID,
				League:       league,
				HomeTeam:     home,
				AwayTeam:     away,
				CommenceTime: ev.StartDate,
				LastSeenAt:   now,
			})

			for _, mkt := range ev.Markets {
				if mkt.Closed {
					continue
				}
				res.Observations = append(res.Observations,
					a.parseMarket(mkt, eventID, home, away, now)...)
			}
		}
	}

	return res, nil
}

// parseMarket converts one two-outcome gamma market into observations. Only
// moneyline-style markets are handled; anything unrecognized is skipped.
func (a *Polymarket) parseMarket(mkt gammaMarket, eventID, home, away string, now time.Time) []domain.PriceObservation {
	var names []string
	var priceStrs []string
	if err := json.Unmarshal([]byte(mkt.Outcomes), &names); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(mkt.OutcomePrices), &priceStrs); err != nil {
		return nil
	}
	if len(names) != 2 || len(priceStrs) != 2 {
		return nil
	}

	var out []domain.PriceObservation
	for i, name := range names {
		prob, err := strconv.ParseFloat(priceStrs[i], 64)
		if err != nil || prob <= 0 || prob >= 1 {
			continue
		}
		side, ok := classifySide(name, home, away)
		if !ok {
			continue
		}
		out = append(out, domain.PriceObservation{
			EventID:           eventID,
			Market:            domain.MarketH2H,
			Side:              side,
			Source:            a.Name(),
			Category:          domain.CategoryOpenMarket,
			Provider:          a.Name(),
			Price:             1.0 / prob,
			ImpliedProb:       prob,
			DeviggedProb:      prob, // open-market prices are fair
			ProviderUpdatedAt: mkt.UpdatedAt,
			IngestedAt:        now,
			SourceEventID:     mkt.ID,
			SourceMarketID:    mkt.Slug,
		})
	}
	return out
}

// splitMatchup extracts the two participants from an event title like
// "Lakers vs. Celtics" or "Rangers at Bruins".
func splitMatchup(title string) (home, away string, ok bool) {
	for _, sep := range []string{" vs. ", " vs ", " at ", " @ "} {
		if parts := strings.SplitN(title, sep, 2); len(parts) == 2 {
			// Title order is away-first for "at"/"@" separators.
			if sep == " at " || sep == " @ " {
				return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0]), true
			}
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
		}
	}
	return "", "", false
}
