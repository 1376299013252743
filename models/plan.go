package models

import "time"

// Billing intervals a plan can renew on.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Plan is a purchasable subscription tier. Price is informational only —
// payment processing is out of scope for this service; plans exist so
// subscriptions have something to point at.
type Plan struct {
	// ID is the plan's UUID.
	ID string `json:"id"`

	// Code is the stable, unique, human-readable identifier clients use to
	// subscribe (e.g. "pro-monthly").
	Code string `json:"code"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// PriceCents is the advertised price in the smallest currency unit.
	PriceCents int64 `json:"price_cents"`

	// Currency is the ISO 4217 code, e.g. "USD".
	Currency string `json:"currency"`

	// Interval is the renewal cadence: IntervalMonth or IntervalYear.
	Interval string `json:"interval"`

	// TrialDays, when positive, starts new subscriptions in a trial period
	// of that many days instead of a paid interval.
	TrialDays int `json:"trial_days,omitempty"`

	// Active controls listing visibility. Deactivated plans stay valid for
	// existing subscriptions but cannot be newly subscribed to.
	Active bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Plan model.
func (p Plan) TableName() string {
	return "plans"
}

// PlanPatch is a partial plan update; nil fields are left untouched. Code is
// deliberately absent: plan codes are referenced by clients and immutable.
type PlanPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	Currency    *string `json:"currency,omitempty"`
	Interval    *string `json:"interval,omitempty"`
	TrialDays   *int    `json:"trial_days,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p PlanPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.PriceCents == nil &&
		p.Currency == nil && p.Interval == nil && p.TrialDays == nil && p.Active == nil
}

// PeriodFrom returns the subscription period [start, end) a fresh
// subscription to this plan occupies when started at start.
func (p Plan) PeriodFrom(start time.Time) (time.Time, time.Time) {
	if p.TrialDays > 0 {
		return start, start.AddDate(0, 0, p.TrialDays)
	}
	return start, p.NextRenewal(start)
}

// NextRenewal advances start by one billing interval. The reconciler uses it
// to roll periods: the new period starts exactly where the old one ended.
func (p Plan) NextRenewal(start time.Time) time.Time {
	if p.Interval == IntervalYear {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}
