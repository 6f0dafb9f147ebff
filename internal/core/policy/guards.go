package policy

import "fmt"

// MaxDelaySeconds caps any stage delay at one day.
const MaxDelaySeconds = 24 * 60 * 60

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidValue, r.Reason)
}

// CanSavePolicy evaluates whether a policy is well-formed enough to persist.
// Rule: the preset marker must be known and every delay must be within [0, MaxDelaySeconds].
// Stage ordering is not checked; see OrderingWarnings.
func CanSavePolicy(p Policy) GuardResult {
	if _, ok := Describe(p.ActivePreset); !ok {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown active preset %q", p.ActivePreset),
		}
	}
	for _, s := range Stages {
		_, after := p.StageConfig(s)
		if after < 0 || after > MaxDelaySeconds {
			return GuardResult{
				Allowed: false,
				Reason:  fmt.Sprintf("%s delay %ds out of range (0..%d)", s, after, MaxDelaySeconds),
			}
		}
	}
	return GuardResult{Allowed: true}
}

// OrderingWarnings lists enabled stage pairs whose delays do not increase in firing order.
// Such policies are accepted; stages will fire in delay order rather than the intuitive sequence.
func OrderingWarnings(p Policy) []string {
	var warnings []string
	enabled := p.EnabledStages()
	for i := 1; i < len(enabled); i++ {
		_, prev := p.StageConfig(enabled[i-1])
		_, cur := p.StageConfig(enabled[i])
		if cur <= prev {
			warnings = append(warnings, fmt.Sprintf("%s fires at %ds, not after %s at %ds", enabled[i], cur, enabled[i-1], prev))
		}
	}
	return warnings
}

// Validate returns CanSavePolicy as an error.
func Validate(p Policy) error {
	return CanSavePolicy(p).Error()
}
