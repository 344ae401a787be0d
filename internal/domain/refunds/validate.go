package refunds

import (
	"fmt"
	"slices"
	"time"
)

// Validator decides whether a normalized request was registered before the
// cutoff allowed by its channel and policy.
type Validator struct {
	policy Policy
}

// NewValidator builds a Validator around an injected policy.
func NewValidator(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Validate always fills the explanation when it succeeds. A missing time
// limit for the request's channel and policy is returned as a
// ConfigurationLookupError.
func (v *Validator) Validate(n *NormalizedRequest) (*ValidationResult, error) {
	if n == nil {
		return nil, MalformedInputError{Message: "normalized request is required"}
	}
	if !slices.Contains(Channels(), n.Channel) {
		return nil, MalformedInputError{Field: "requestSource", Message: fmt.Sprintf("unrecognized channel %q", n.Channel)}
	}

	requested := n.RefundRequestedAt.In(v.policy.Canonical)
	registered, rule := v.Register(n.Channel, requested)

	hours, err := v.policy.TimeLimits.Hours(n.Channel, n.Policy)
	if err != nil {
		return nil, err
	}
	investment := n.InvestmentAt.In(v.policy.Canonical)
	cutoff := Cutoff(investment, hours)
	valid := WithinCutoff(registered, cutoff)

	return &ValidationResult{
		Valid: valid,
		Explanation: Explanation{
			InvestmentAt:   investment,
			RequestedAt:    requested,
			RegisteredAt:   registered,
			CutoffAt:       cutoff,
			Rule:           rule,
			TimeLimitHours: hours,
			Policy:         n.Policy,
			Channel:        n.Channel,
			Valid:          valid,
		},
	}, nil
}

// Register returns the instant a request counts as made. Web submissions
// are stamped immediately; phone calls outside business hours roll forward
// to the next opening.
func (v *Validator) Register(channel Channel, requested time.Time) (time.Time, RegistrationRule) {
	if channel != ChannelPhone {
		return requested, RuleImmediate
	}

	hours := v.policy.BusinessHours
	local := requested.In(v.policy.Canonical)
	switch {
	case !hours.IsBusinessDay(local.Weekday()):
		return v.nextOpening(local), RuleNonBusinessDay
	case local.Hour() >= hours.Closing:
		return v.nextOpening(local), RuleAfterClosing
	case local.Hour() < hours.Opening:
		y, m, d := local.Date()
		return time.Date(y, m, d, hours.Opening, 0, 0, 0, local.Location()), RuleBeforeOpening
	default:
		return local, RuleWithinHours
	}
}

// nextOpening finds the first business day after t and returns its opening
// instant. Any minutes on t are dropped.
func (v *Validator) nextOpening(t time.Time) time.Time {
	hours := v.policy.BusinessHours
	y, m, d := t.Date()
	for offset := 1; offset <= 7; offset++ {
		day := time.Date(y, m, d+offset, hours.Opening, 0, 0, 0, t.Location())
		if hours.IsBusinessDay(day.Weekday()) {
			return day
		}
	}
	// Unreachable with a checked BusinessHours.
	return time.Date(y, m, d+1, hours.Opening, 0, 0, 0, t.Location())
}

// Cutoff adds the allowance in elapsed hours, so day, month and year
// boundaries fall out of the time arithmetic.
func Cutoff(investment time.Time, hours int) time.Time {
	return investment.Add(time.Duration(hours) * time.Hour)
}

// WithinCutoff compares at minute granularity; a registration on the cutoff
// minute is valid.
func WithinCutoff(registered, cutoff time.Time) bool {
	return !registered.Truncate(time.Minute).After(cutoff.Truncate(time.Minute))
}
