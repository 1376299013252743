package validators

import (
	"context"
	"regexp"
	"strings"

	"github.com/galionhq/nexus/models"
)

// Field name constants for the billing models.
const (
	// FieldPlanCode targets the stable plan identifier clients subscribe by.
	FieldPlanCode = "plan_code"

	// FieldPlanName targets the display name of a plan.
	FieldPlanName = "plan_name"

	// FieldPrice targets the advertised price of a plan.
	FieldPrice = "price_cents"

	// FieldCurrency targets the ISO 4217 currency code of a plan.
	FieldCurrency = "currency"

	// FieldInterval targets the renewal cadence of a plan.
	FieldInterval = "interval"

	// FieldTrialDays targets the trial length of a plan.
	FieldTrialDays = "trial_days"
)

const maxTrialDays = 365

// planCodePattern accepts dash-separated lowercase words, e.g. "pro-monthly".
var planCodePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// BillingValidator implements the Validator interface for the billing
// request models: PlanRequest, PlanPatch and SubscribeRequest.
//
// It supports both value and pointer receivers for every model type
// and allows optional field-level scoping via variadic field name arguments.
type BillingValidator struct {
}

// NewBillingValidator constructs a new BillingValidator
// and returns it as the Validator interface.
func NewBillingValidator() Validator {
	return &BillingValidator{}
}

// Validate dispatches validation to the appropriate type-specific method
// based on the dynamic type of obj. Both value and pointer forms of each
// supported model are accepted.
//
// Returns ErrUnsupportedType if obj does not match any known model.
func (v *BillingValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.PlanRequest:
		return v.validatePlanRequest(ctx, value, fields...)
	case *models.PlanRequest:
		return v.validatePlanRequest(ctx, *value, fields...)

	case models.PlanPatch:
		return v.validatePlanPatch(ctx, value, fields...)
	case *models.PlanPatch:
		return v.validatePlanPatch(ctx, *value, fields...)

	case models.SubscribeRequest:
		return v.validateSubscribeRequest(ctx, value, fields...)
	case *models.SubscribeRequest:
		return v.validateSubscribeRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validatePlanRequest validates a full plan creation request.
//
// Default validated fields (when none specified):
// PlanCode, PlanName, Price, Currency, Interval, TrialDays.
func (v *BillingValidator) validatePlanRequest(_ context.Context, req models.PlanRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldPlanCode, FieldPlanName, FieldPrice, FieldCurrency, FieldInterval, FieldTrialDays}
	}

	for _, f := range fields {
		switch f {
		case FieldPlanCode:
			if err := checkPlanCode(req.Code); err != nil {
				return err
			}
		case FieldPlanName:
			if strings.TrimSpace(req.Name) == "" {
				return ErrPlanNameRequired
			}
		case FieldPrice:
			if req.PriceCents < 0 {
				return ErrInvalidPrice
			}
		case FieldCurrency:
			if !isCurrencyCode(req.Currency) {
				return ErrInvalidCurrency
			}
		case FieldInterval:
			if req.Interval != models.IntervalMonth && req.Interval != models.IntervalYear {
				return ErrInvalidInterval
			}
		case FieldTrialDays:
			if req.TrialDays < 0 || req.TrialDays > maxTrialDays {
				return ErrInvalidTrialDays
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validatePlanPatch validates a partial plan update. Unset fields pass;
// a patch that sets nothing at all is rejected.
func (v *BillingValidator) validatePlanPatch(_ context.Context, patch models.PlanPatch, _ ...string) error {
	if patch.Empty() {
		return ErrNoFieldsToUpdate
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return ErrPlanNameRequired
	}
	if patch.PriceCents != nil && *patch.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if patch.Currency != nil && !isCurrencyCode(*patch.Currency) {
		return ErrInvalidCurrency
	}
	if patch.Interval != nil && *patch.Interval != models.IntervalMonth && *patch.Interval != models.IntervalYear {
		return ErrInvalidInterval
	}
	if patch.TrialDays != nil && (*patch.TrialDays < 0 || *patch.TrialDays > maxTrialDays) {
		return ErrInvalidTrialDays
	}

	return nil
}

// validateSubscribeRequest validates a subscription request.
func (v *BillingValidator) validateSubscribeRequest(_ context.Context, req models.SubscribeRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldPlanCode}
	}

	for _, f := range fields {
		switch f {
		case FieldPlanCode:
			if strings.TrimSpace(req.PlanCode) == "" {
				return ErrPlanCodeRequired
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func checkPlanCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrPlanCodeRequired
	}
	if !planCodePattern.MatchString(code) {
		return ErrInvalidPlanCode
	}
	return nil
}

// isCurrencyCode reports whether s is exactly three ASCII letters. Case is
// normalized by the service, not here.
func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
