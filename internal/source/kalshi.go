package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linescout/linescout/internal/domain"
)

// KalshiConfig configures the Kalshi open-market adapter.
type KalshiConfig struct {
	BaseURL string   // default https://api.elections.kalshi.com/trade-api/v2
	Series  []string // series tickers to scan, e.g. "KXNBA", "KXNHL"
	Limit   int
}

// Kalshi ingests event-contract prices from the Kalshi trade API. Contract
// prices are quoted in cents and map directly to probabilities.
type Kalshi struct {
	cfg    KalshiConfig
	client *http.Client
}

// NewKalshi creates the Kalshi adapter.
func NewKalshi(cfg KalshiConfig) *Kalshi {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elections.kalshi.com/trade-api/v2"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 200
	}
	return &Kalshi{cfg: cfg, client: newHTTPClient()}
}

func (a *Kalshi) Name() string                    { return "kalshi" }
func (a *Kalshi) Category() domain.SourceCategory { return domain.CategoryOpenMarket }

// Wire types for the /markets response.
type kalshiMarketsPage struct {
	Markets []kalshiMarket `json:"markets"`
	Cursor  string         `json:"cursor"`
}

type kalshiMarket struct {
	Ticker                 string    `json:"ticker"`
	EventTicker            string    `json:"event_ticker"`
	Title                  string    `json:"title"`
	YesSubTitle            string    `json:"yes_sub_title"`
	Status                 string    `json:"status"`
	YesBid                 int       `json:"yes_bid"` // cents
	YesAsk                 int       `json:"yes_ask"` // cents
	ExpectedExpirationTime time.Time `json:"expected_expiration_time"`
	LastUpdateTime         time.Time `json:"last_update_time"`
}

// Poll implements Adapter.
func (a *Kalshi) Poll(ctx context.Context) (domain.PollResult, error) {
	res := domain.PollResult{Source: a.Name()}
	now := time.Now().UTC()

	seenEvents := make(map[string]bool)
	for _, series := range a.cfg.Series {
		params := url.Values{}
		params.Set("series_ticker", series)
		params.Set("status", "open")
		params.Set("limit", fmt.Sprintf("%d", a.cfg.Limit))

		var page kalshiMarketsPage
		res.APICalls++
		if err := getJSON(ctx, a.client, a.cfg.BaseURL+"/markets", params, nil, &page); err != nil {
			return res, fmt.Errorf("kalshi: markets series=%s: %w", series, err)
		}

		for _, mkt := range page.Markets {
			if mkt.Status != "active" && mkt.Status != "open" {
				continue
			}
			home, away, ok := splitMatchup(mkt.Title)
			if !ok {
				continue
			}
			league := domain.CanonicalLeague(strings.TrimPrefix(series, "KX"))
			eventID := domain.CanonicalEventID(
				mkt.ExpectedExpirationTime.UTC().Format("2006-01-02"), league, home, away,
			)
			if !seenEvents[eventID] {
				seenEvents[eventID] = true
				res.Events = append(res.Events, domain.Event{
					ID:           eventID,
					League:       league,
					HomeTeam:     home,
					AwayTeam:     away,
					CommenceTime: mkt.ExpectedExpirationTime,
					LastSeenAt:   now,
				})
			}

			// Each binary market resolves yes for one participant; the mid
			// of the yes book is the market's probability for that side.
			side, ok := classifySide(mkt.YesSubTitle, home, away)
			if !ok {
				continue
			}
			prob := float64(mkt.YesBid+mkt.YesAsk) / 2.0 / 100.0
			if prob <= 0 || prob >= 1 {
				continue
			}
			res.Observations = append(res.Observations, domain.PriceObservation{
				EventID:           eventID,
				Market:            domain.MarketH2H,
				Side:              side,
				Source:            a.Name(),
				Category:          domain.CategoryOpenMarket,
				Provider:          a.Name(),
				Price:             1.0 / prob,
				ImpliedProb:       prob,
				DeviggedProb:      prob,
				ProviderUpdatedAt: mkt.LastUpdateTime,
				IngestedAt:        now,
				SourceEventID:     mkt.EventTicker,
				SourceMarketID:    mkt.Ticker,
			})
		}
	}

	return res, nil
}
