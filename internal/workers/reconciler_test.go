package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galionhq/nexus/internal/logger"
	"github.com/galionhq/nexus/models"
)

// spyBilling counts Reconcile calls and returns a configurable result.
type spyBilling struct {
	calls atomic.Int64
	stats models.ReconcileStats
	err   error
}

func (s *spyBilling) Reconcile(_ context.Context, _ time.Time) (models.ReconcileStats, error) {
	s.calls.Add(1)
	return s.stats, s.err
}

// spyPurger counts DeleteExpired calls.
type spyPurger struct {
	calls atomic.Int64
}

func (s *spyPurger) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	s.calls.Add(1)
	return 0, nil
}

func newTestReconciler(billing *spyBilling, interval time.Duration) (*Reconciler, *spyPurger, *spyPurger) {
	tokens := &spyPurger{}
	codes := &spyPurger{}
	return NewReconciler(billing, tokens, codes, interval, logger.Nop()), tokens, codes
}

// ── Construction ─────────────────────────────────────────────────────────────

// TestNewReconciler_DefaultInterval verifies a non-positive interval falls
// back to the built-in default.
func TestNewReconciler_DefaultInterval(t *testing.T) {
	r, _, _ := newTestReconciler(&spyBilling{}, 0)
	require.NotNil(t, r)
	assert.Equal(t, defaultReconcileInterval, r.interval)
}

// ── Run / Stop ───────────────────────────────────────────────────────────────

// TestReconciler_Run_ImmediatePass verifies the first sweep happens right at
// startup, not one interval later.
func TestReconciler_Run_ImmediatePass(t *testing.T) {
	billing := &spyBilling{}
	r, tokens, codes := newTestReconciler(billing, time.Hour)

	r.Run()
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	assert.Equal(t, int64(1), billing.calls.Load(), "exactly the startup pass should have run")
	assert.Equal(t, int64(1), tokens.calls.Load())
	assert.Equal(t, int64(1), codes.calls.Load())
}

// TestReconciler_Run_PassesOnTicker verifies sweeps repeat on the configured
// interval.
func TestReconciler_Run_PassesOnTicker(t *testing.T) {
	billing := &spyBilling{}
	r, _, _ := newTestReconciler(billing, 10*time.Millisecond)

	r.Run()
	time.Sleep(55 * time.Millisecond)
	r.Stop()

	got := billing.calls.Load()
	assert.GreaterOrEqual(t, got, int64(3), "expected several sweeps, got %d", got)
}

// TestReconciler_Stop_HaltsPasses verifies no sweeps run after Stop returns.
func TestReconciler_Stop_HaltsPasses(t *testing.T) {
	billing := &spyBilling{}
	r, _, _ := newTestReconciler(billing, 10*time.Millisecond)

	r.Run()
	time.Sleep(30 * time.Millisecond)
	r.Stop()

	callsAfterStop := billing.calls.Load()
	time.Sleep(30 * time.Millisecond)
	callsLater := billing.calls.Load()

	assert.Equal(t, callsAfterStop, callsLater, "no sweeps should run after Stop")
}

// TestReconciler_Stop_BeforeRun_NoPanic verifies Stop is a no-op on an idle
// worker.
func TestReconciler_Stop_BeforeRun_NoPanic(t *testing.T) {
	r, _, _ := newTestReconciler(&spyBilling{}, 10*time.Millisecond)

	assert.NotPanics(t, func() { r.Stop() })
}

// TestReconciler_DoubleStop_NoPanic verifies repeated Stop calls are safe.
func TestReconciler_DoubleStop_NoPanic(t *testing.T) {
	r, _, _ := newTestReconciler(&spyBilling{}, 10*time.Millisecond)

	r.Run()
	r.Stop()

	assert.NotPanics(t, func() { r.Stop() })
}

// TestReconciler_Run_RestartsCleanly verifies a second Run supersedes the
// first loop instead of stacking a second goroutine.
func TestReconciler_Run_RestartsCleanly(t *testing.T) {
	billing := &spyBilling{}
	r, _, _ := newTestReconciler(billing, 10*time.Millisecond)

	r.Run()
	r.Run()
	time.Sleep(25 * time.Millisecond)
	r.Stop()

	callsAfterStop := billing.calls.Load()
	time.Sleep(25 * time.Millisecond)

	assert.Equal(t, callsAfterStop, billing.calls.Load(), "restart must not leak a loop that survives Stop")
}

// ── Failure handling ─────────────────────────────────────────────────────────

// TestReconciler_Pass_SurvivesReconcileError verifies a failing billing sweep
// neither stops the loop nor skips the credential purges.
func TestReconciler_Pass_SurvivesReconcileError(t *testing.T) {
	billing := &spyBilling{err: errors.New("db gone")}
	r, tokens, codes := newTestReconciler(billing, 10*time.Millisecond)

	r.Run()
	time.Sleep(45 * time.Millisecond)
	r.Stop()

	assert.GreaterOrEqual(t, billing.calls.Load(), int64(3), "sweeps should continue after errors")
	assert.GreaterOrEqual(t, tokens.calls.Load(), int64(3))
	assert.GreaterOrEqual(t, codes.calls.Load(), int64(3))
}
