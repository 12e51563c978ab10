package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

// STXConfig configures the STX sports-exchange adapter.
type STXConfig struct {
	BaseURL string   // default https://api.stx.bet/v1
	APIKey  string
	Leagues []string // e.g. "nba", "nhl"
}

// STX ingests prices from the STX sports exchange. Exchange prices carry no
// bookmaker margin, so they pass through de-vig untouched.
type STX struct {
	cfg    STXConfig
	client *http.Client
}

// NewSTX creates the STX adapter.
func NewSTX(cfg STXConfig) *STX {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stx.bet/v1"
	}
	return &STX{cfg: cfg, client: newHTTPClient()}
}

func (a *STX) Name() string                    { return "stx" }
func (a *STX) Category() domain.SourceCategory { return domain.CategoryOpenMarket }

// Wire types for the /markets response.
type stxMarketsPage struct {
	Markets []stxMarket `json:"markets"`
}

type stxMarket struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	League    string    `json:"league"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`
	Type      string    `json:"type"` // "moneyline", "spread", "total"
	Line      float64   `json:"line"`
	UpdatedAt time.Time `json:"updated_at"`
	Quotes    []struct {
		Outcome     string  `json:"outcome"` // team name, "Over", "Under"
		Probability float64 `json:"probability"`
	} `json:"quotes"`
}

// Poll implements Adapter.
func (a *STX) Poll(ctx context.Context) (domain.PollResult, error) {
	res := domain.PollResult{Source: a.Name()}
	now := time.Now().UTC()

	headers := map[string]string{"X-Api-Key": a.cfg.APIKey}
	seenEvents := make(map[string]bool)
	for _, league := range a.cfg.Leagues {
		params := url.Values{}
		params.Set("league", league)
		params.Set("status", "open")

		var page stxMarketsPage
		res.APICalls++
		if err := getJSON(ctx, a.client, a.cfg.BaseURL+"/markets", params, headers, &page); err != nil {
			return res, fmt.Errorf("stx: markets league=%s: %w", league, err)
		}

		for _, mkt := range page.Markets {
			marketType, ok := stxMarketType(mkt.Type)
			if !ok {
				continue
			}
			league := domain.CanonicalLeague(mkt.League)
			eventID := domain.CanonicalEventID(
				mkt.StartTime.UTC().Format("2006-01-02"),
				league, mkt.HomeTeam, mkt.AwayTeam,
			)
			if !seenEvents[eventID] {
				seenEvents[eventID] = true
				res.Events = append(res.Events, domain.Event{
					ID:           eventID,
					League:       league,
					HomeTeam:     mkt.HomeTeam,
					AwayTeam:     mkt.AwayTeam,
					CommenceTime: mkt.StartTime,
					LastSeenAt:   now,
				})
			}

			for _, q := range mkt.Quotes {
				if q.Probability <= 0 || q.Probability >= 1 {
					continue
				}
				side, ok := classifySide(q.Outcome, mkt.HomeTeam, mkt.AwayTeam)
				if !ok {
					continue
				}
				line := mkt.Line
				if marketType == domain.MarketSpreads && side == domain.SideAway {
					line = -mkt.Line
				}
				res.Observations = append(res.Observations, domain.PriceObservation{
					EventID:           eventID,
					Market:            marketType,
					Side:              side,
					Line:              line,
					Source:            a.Name(),
					Category:          domain.CategoryOpenMarket,
					Provider:          a.Name(),
					Price:             1.0 / q.Probability,
					ImpliedProb:       q.Probability,
					DeviggedProb:      q.Probability,
					ProviderUpdatedAt: mkt.UpdatedAt,
					IngestedAt:        now,
					SourceEventID:     mkt.EventID,
					SourceMarketID:    mkt.ID,
				})
			}
		}
	}

	return res, nil
}

func stxMarketType(t string) (domain.MarketType, bool) {
	switch t {
	case "moneyline":
		return domain.MarketH2H, true
	case "spread":
		return domain.MarketSpreads, true
	case "total":
		return domain.MarketTotals, true
	}
	return "", false
}
