package models

import "time"

// Subscription lifecycle states.
//
// trialing and active are "live": they grant access and block a second
// subscription. canceled and expired are terminal.
const (
	SubStatusTrialing = "trialing"
	SubStatusActive   = "active"
	SubStatusCanceled = "canceled"
	SubStatusExpired  = "expired"
)

// Subscription ties a user to a plan for a rolling period. There is no
// payment leg: renewal is a pure state transition performed by the
// background reconciler when a period ends.
type Subscription struct {
	// ID is the subscription's UUID.
	ID string `json:"id"`

	UserID int64  `json:"-"`
	PlanID string `json:"plan_id"`

	// Status is one of the SubStatus constants.
	Status string `json:"status"`

	// CurrentPeriodStart/End bound the period the subscription currently
	// grants access for. On renewal the next period starts exactly at
	// CurrentPeriodEnd.
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`

	// CancelAtPeriodEnd marks the subscription to lapse instead of renew
	// when the current period ends.
	CancelAtPeriodEnd bool `json:"cancel_at_period_end"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Subscription model.
func (s Subscription) TableName() string {
	return "subscriptions"
}

// Live reports whether the subscription currently grants access.
func (s Subscription) Live() bool {
	return s.Status == SubStatusTrialing || s.Status == SubStatusActive
}

// SubscriptionView is a subscription joined with its plan for API responses.
type SubscriptionView struct {
	Subscription
	Plan Plan `json:"plan"`
}

// ReconcileStats summarises one pass of the subscription reconciler.
type ReconcileStats struct {
	Renewed   int `json:"renewed"`
	Converted int `json:"converted"`
	Canceled  int `json:"canceled"`
	Expired   int `json:"expired"`
}

// Total returns the number of subscriptions the pass transitioned.
func (s ReconcileStats) Total() int {
	return s.Renewed + s.Converted + s.Canceled + s.Expired
}
