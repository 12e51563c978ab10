package domain

import "time"

// PollStatus is the scheduler's state for one source.
type PollStatus string

const (
	PollIdle           PollStatus = "idle"
	PollDue            PollStatus = "due"
	PollPolling        PollStatus = "polling"
	PollCooldown       PollStatus = "cooldown"
	PollQuotaExhausted PollStatus = "quota_exhausted"
)

// SourcePollState is the persisted per-source polling record. It is mutated
// exclusively by the scheduler after each poll attempt; each source has a
// single writer, so there is no cross-source update contention.
type SourcePollState struct {
	Source          string
	Status          PollStatus
	LastPollAt      time.Time
	LastPollSuccess bool
	LastError       string
	CooldownUntil   time.Time
	CallsThisWindow int
	QuotaResetAt    time.Time // start of the next quota window
	LifetimeCalls   int64
	UpdatedAt       time.Time
}

// PollResult is what one adapter poll produced: the events and observations
// to persist, and the number of API calls consumed against the quota.
type PollResult struct {
	Source       string
	Events       []Event
	Observations []PriceObservation
	APICalls     int
}
