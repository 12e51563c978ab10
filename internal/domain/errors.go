package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// DegenerateMarketError indicates a market instance that cannot be de-vigged:
// fewer than two sides, or zero total probability mass. The affected group is
// skipped; detection continues with the remaining groups.
type DegenerateMarketError struct {
	EventID string
	Market  MarketType
	Sides   int
	Reason  string
}

func (e *DegenerateMarketError) Error() string {
	return fmt.Sprintf("degenerate market %s/%s (%d sides): %s",
		e.EventID, e.Market, e.Sides, e.Reason)
}
