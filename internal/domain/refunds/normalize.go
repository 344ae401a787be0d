package refunds

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Normalizer converts raw requests into the canonical timezone and tags them
// with the policy regime in force at sign-up.
type Normalizer struct {
	policy    Policy
	validator *validator.Validate
}

// NewNormalizer builds a Normalizer around an injected policy.
func NewNormalizer(policy Policy) *Normalizer {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	return &Normalizer{
		policy:    policy,
		validator: v,
	}
}

// Normalize converts raw. It never returns a partial result: either every
// canonical field is populated or an error is returned.
//
// Errors:
//   - MalformedInputError: raw is nil, a field is empty or the channel is unknown
//   - ConfigurationLookupError: the customer location has no mapping entry
//   - ParseError: a date or time does not match the location's layout
func (n *Normalizer) Normalize(raw *RawRequest) (*NormalizedRequest, error) {
	if raw == nil {
		return nil, MalformedInputError{Message: "request is required"}
	}
	input := trimRawRequest(*raw)

	if err := n.validator.Struct(input); err != nil {
		return nil, requiredFieldError(err)
	}

	channel, ok := ParseChannel(input.Channel)
	if !ok {
		return nil, MalformedInputError{Field: "requestSource", Message: fmt.Sprintf("unrecognized channel %q", input.Channel)}
	}

	loc, err := n.policy.Locations.Lookup(input.CustomerLocation)
	if err != nil {
		return nil, err
	}

	signUp, err := time.Parse(loc.DateLayout, input.SignUpDate)
	if err != nil {
		return nil, ParseError{Field: "signUpDate", Value: input.SignUpDate, Layout: loc.DatePattern, Err: err}
	}
	signUp = civilDate(signUp)

	investment, err := n.instant("investment", input.InvestmentDate, input.InvestmentTime, loc)
	if err != nil {
		return nil, err
	}
	refund, err := n.instant("refundRequest", input.RefundRequestDate, input.RefundRequestTime, loc)
	if err != nil {
		return nil, err
	}

	return &NormalizedRequest{
		Name:              input.Name,
		CustomerLocation:  input.CustomerLocation,
		Channel:           channel,
		SignUpDate:        signUp,
		InvestmentAt:      investment,
		RefundRequestedAt: refund,
		Policy:            n.policy.Classify(signUp),
	}, nil
}

// instant reads a local date and clock pair in the location's zone and
// converts it to the canonical zone.
func (n *Normalizer) instant(field, date, clock string, loc Location) (time.Time, error) {
	layout := loc.DateLayout + " " + loc.TimeLayout
	value := date + " " + clock
	t, err := time.ParseInLocation(layout, value, loc.Zone)
	if err != nil {
		return time.Time{}, ParseError{Field: field, Value: value, Layout: loc.DatePattern + " " + loc.TimePattern, Err: err}
	}
	return t.In(n.policy.Canonical), nil
}

func trimRawRequest(r RawRequest) RawRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.CustomerLocation = strings.TrimSpace(r.CustomerLocation)
	r.Channel = strings.TrimSpace(r.Channel)
	r.SignUpDate = strings.TrimSpace(r.SignUpDate)
	r.InvestmentDate = strings.TrimSpace(r.InvestmentDate)
	r.InvestmentTime = strings.TrimSpace(r.InvestmentTime)
	r.RefundRequestDate = strings.TrimSpace(r.RefundRequestDate)
	r.RefundRequestTime = strings.TrimSpace(r.RefundRequestTime)
	return r
}

func requiredFieldError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return MalformedInputError{Field: fieldErrs[0].Field(), Message: "is required"}
	}
	return MalformedInputError{Message: err.Error()}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}
