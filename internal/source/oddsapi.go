package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linescout/linescout/internal/domain"
	"github.com/linescout/linescout/internal/odds"
)

// OddsAPIConfig configures the regulated-sportsbook aggregator adapter.
type OddsAPIConfig struct {
	BaseURL string // default https://api.the-odds-api.com
	APIKey  string
	Sports  []string // e.g. "basketball_nba", "icehockey_nhl"
	Markets []string // e.g. "h2h", "spreads", "totals"
	Books   []string // bookmaker keys to keep; empty keeps all
}

// OddsAPI ingests decimal odds from regulated sportsbooks via The Odds API.
// One request per sport/market combination, so each poll consumes
// len(Sports) * len(Markets) quota calls.
type OddsAPI struct {
	cfg    OddsAPIConfig
	client *http.Client
}

// NewOddsAPI creates the aggregator adapter.
func NewOddsAPI(cfg OddsAPIConfig) *OddsAPI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.the-odds-api.com"
	}
	return &OddsAPI{cfg: cfg, client: newHTTPClient()}
}

func (a *OddsAPI) Name() string                    { return "odds_api" }
func (a *OddsAPI) Category() domain.SourceCategory { return domain.CategorySportsbook }

// Wire types for the /v4/sports/{sport}/odds response.
type oddsAPIEvent struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	Bookmakers   []struct {
		Key        string    `json:"key"`
		LastUpdate time.Time `json:"last_update"`
		Markets    []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
				Point float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// Poll implements Adapter.
func (a *OddsAPI) Poll(ctx context.Context) (domain.PollResult, error) {
	res := domain.PollResult{Source: a.Name()}
	now := time.Now().UTC()

	keep := make(map[string]bool, len(a.cfg.Books))
	for _, b := range a.cfg.Books {
		keep[b] = true
	}

	seenEvents := make(map[string]bool)
	for _, sport := range a.cfg.Sports {
		for _, market := range a.cfg.Markets {
			params := url.Values{}
			params.Set("apiKey", a.cfg.APIKey)
			params.Set("regions", "us")
			params.Set("markets", market)
			params.Set("oddsFormat", "decimal")

			var events []oddsAPIEvent
			reqURL := fmt.Sprintf("%s/v4/sports/%s/odds", a.cfg.BaseURL, sport)
			res.APICalls++
			if err := getJSON(ctx, a.client, reqURL, params, nil, &events); err != nil {
				return res, fmt.Errorf("odds_api: %s/%s: %w", sport, market, err)
			}

			for _, ev := range events {
				eventID := domain.CanonicalEventID(
					ev.CommenceTime.UTC().Format("2006-01-02"),
					sport, ev.HomeTeam, ev.AwayTeam,
				)
				if !seenEvents[eventID] {
					seenEvents[eventID] = true
					res.Events = append(res.Events, domain.Event{
						ID:           eventID,
						League:       sport,
						HomeTeam:     ev.HomeTeam,
						AwayTeam:     ev.AwayTeam,
						CommenceTime: ev.CommenceTime,
						LastSeenAt:   now,
					})
				}

				for _, book := range ev.Bookmakers {
					if len(keep) > 0 && !keep[book.Key] {
						continue
					}
					for _, mkt := range book.Markets {
						group := make([]domain.PriceObservation, 0, len(mkt.Outcomes))
						for _, out := range mkt.Outcomes {
							side, ok := classifySide(out.Name, ev.HomeTeam, ev.AwayTeam)
							if !ok {
								continue
							}
							group = append(group, domain.PriceObservation{
								EventID:           eventID,
								Market:            domain.MarketType(mkt.Key),
								Side:              side,
								Line:              out.Point,
								Source:            a.Name(),
								Category:          domain.CategorySportsbook,
								Provider:          book.Key,
								Price:             out.Price,
								ImpliedProb:       odds.ImpliedProb(out.Price),
								ProviderUpdatedAt: book.LastUpdate,
								IngestedAt:        now,
								SourceEventID:     ev.ID,
							})
						}

						devigged, err := odds.DevigMarket(group)
						if err != nil {
							// One degenerate book market never aborts the poll.
							continue
						}
						res.Observations = append(res.Observations, devigged...)
					}
				}
			}
		}
	}

	return res, nil
}

// classifySide maps an outcome name onto a side relative to the event's
// participants.
func classifySide(name, home, away string) (domain.Side, bool) {
	switch {
	case strings.EqualFold(name, "Over"):
		return domain.SideOver, true
	case strings.EqualFold(name, "Under"):
		return domain.SideUnder, true
	case domain.NormalizeTeam(name) == domain.NormalizeTeam(home):
		return domain.SideHome, true
	case domain.NormalizeTeam(name) == domain.NormalizeTeam(away):
		return domain.SideAway, true
	}
	return "", false
}
