package refunds

import (
	"encoding/json"
	"strings"
	"time"
)

// Canonical layouts used for every normalized value.
const (
	CanonicalDateLayout     = "02/01/2006"
	CanonicalDateTimeLayout = "02/01/2006 15:04"
)

// Channel is the medium a refund request was submitted through.
type Channel string

const (
	ChannelPhone  Channel = "phone"
	ChannelWebApp Channel = "web-app"
)

// Channels lists every recognized channel.
func Channels() []Channel {
	return []Channel{ChannelPhone, ChannelWebApp}
}

// ParseChannel maps a raw channel value onto a known Channel. The spelling
// "web app" used by older fixture data is accepted as ChannelWebApp.
func ParseChannel(value string) (Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ChannelPhone):
		return ChannelPhone, true
	case string(ChannelWebApp), "web app", "webapp":
		return ChannelWebApp, true
	default:
		return "", false
	}
}

// PolicyTag identifies which terms of service apply to a customer.
type PolicyTag string

const (
	PolicyOld PolicyTag = "old"
	PolicyNew PolicyTag = "new"
)

// PolicyTags lists both policy regimes.
func PolicyTags() []PolicyTag {
	return []PolicyTag{PolicyOld, PolicyNew}
}

// ParsePolicyTag accepts the tag names as well as the oTOS/nTOS shorthand.
func ParsePolicyTag(value string) (PolicyTag, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(PolicyOld), "otos":
		return PolicyOld, true
	case string(PolicyNew), "ntos":
		return PolicyNew, true
	default:
		return "", false
	}
}

// RawRequest is a refund request as recorded in the customer's local calendar.
type RawRequest struct {
	Name              string `json:"name" validate:"required"`
	CustomerLocation  string `json:"customerLocation" validate:"required"`
	Channel           string `json:"requestSource" validate:"required"`
	SignUpDate        string `json:"signUpDate" validate:"required"`
	InvestmentDate    string `json:"investmentDate" validate:"required"`
	InvestmentTime    string `json:"investmentTime" validate:"required"`
	RefundRequestDate string `json:"refundRequestDate" validate:"required"`
	RefundRequestTime string `json:"refundRequestTime" validate:"required"`
}

// NormalizedRequest carries a request converted to the canonical timezone.
// SignUpDate is a civil date held at midnight UTC; the two instants are held
// in the canonical location.
type NormalizedRequest struct {
	Name              string
	CustomerLocation  string
	Channel           Channel
	SignUpDate        time.Time
	InvestmentAt      time.Time
	RefundRequestedAt time.Time
	Policy            PolicyTag
}

type normalizedRequestJSON struct {
	Name              string    `json:"name"`
	CustomerLocation  string    `json:"customerLocation"`
	Channel           Channel   `json:"requestSource"`
	SignUpDate        string    `json:"signUpDate"`
	InvestmentAt      string    `json:"investmentDate"`
	RefundRequestedAt string    `json:"refundRequestDate"`
	Policy            PolicyTag `json:"policy"`
}

// MarshalJSON renders dates in the canonical day/month/year layouts.
func (n NormalizedRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(normalizedRequestJSON{
		Name:              n.Name,
		CustomerLocation:  n.CustomerLocation,
		Channel:           n.Channel,
		SignUpDate:        n.SignUpDate.Format(CanonicalDateLayout),
		InvestmentAt:      n.InvestmentAt.Format(CanonicalDateTimeLayout),
		RefundRequestedAt: n.RefundRequestedAt.Format(CanonicalDateTimeLayout),
		Policy:            n.Policy,
	})
}

// RegistrationRule records which business-hours rule produced the
// registered instant.
type RegistrationRule string

const (
	RuleImmediate      RegistrationRule = "immediate"
	RuleWithinHours    RegistrationRule = "within-hours"
	RuleBeforeOpening  RegistrationRule = "before-opening"
	RuleAfterClosing   RegistrationRule = "after-closing"
	RuleNonBusinessDay RegistrationRule = "non-business-day"
)

// Explanation is the audit bundle shown next to a validation outcome.
type Explanation struct {
	InvestmentAt   time.Time
	RequestedAt    time.Time
	RegisteredAt   time.Time
	CutoffAt       time.Time
	Rule           RegistrationRule
	TimeLimitHours int
	Policy         PolicyTag
	Channel        Channel
	Valid          bool
}

// InvestmentWeekday, RequestedWeekday, RegisteredWeekday and CutoffWeekday
// return English weekday names for the explained instants.
func (e Explanation) InvestmentWeekday() string { return e.InvestmentAt.Weekday().String() }
func (e Explanation) RequestedWeekday() string { return e.RequestedAt.Weekday().String() }
func (e Explanation) RegisteredWeekday() string { return e.RegisteredAt.Weekday().String() }
func (e Explanation) CutoffWeekday() string { return e.CutoffAt.Weekday().String() }

type explanationJSON struct {
	InvestmentAt      string           `json:"investmentDate"`
	InvestmentWeekday string           `json:"investmentDayOfWeek"`
	RequestedAt       string           `json:"requestMadeTime"`
	RequestedWeekday  string           `json:"requestMadeDayOfWeek"`
	RegisteredAt      string           `json:"registeredRequestTime"`
	RegisteredWeekday string           `json:"registeredRequestDayOfWeek"`
	CutoffAt          string           `json:"requestCutoffDate"`
	CutoffWeekday     string           `json:"requestCutoffDayOfWeek"`
	Rule              RegistrationRule `json:"registrationRule"`
	TimeLimitHours    int              `json:"timeLimit"`
	Policy            PolicyTag        `json:"policy"`
	Channel           Channel          `json:"requestSource"`
	Valid             bool             `json:"isRequestValid"`
}

// MarshalJSON renders the bundle for tooltip consumption.
func (e Explanation) MarshalJSON() ([]byte, error) {
	return json.Marshal(explanationJSON{
		InvestmentAt:      e.InvestmentAt.Format(CanonicalDateTimeLayout),
		InvestmentWeekday: e.InvestmentWeekday(),
		RequestedAt:       e.RequestedAt.Format(CanonicalDateTimeLayout),
		RequestedWeekday:  e.RequestedWeekday(),
		RegisteredAt:      e.RegisteredAt.Format(CanonicalDateTimeLayout),
		RegisteredWeekday: e.RegisteredWeekday(),
		CutoffAt:          e.CutoffAt.Format(CanonicalDateTimeLayout),
		CutoffWeekday:     e.CutoffWeekday(),
		Rule:              e.Rule,
		TimeLimitHours:    e.TimeLimitHours,
		Policy:            e.Policy,
		Channel:           e.Channel,
		Valid:             e.Valid,
	})
}

// ValidationResult is the outcome of checking one normalized request.
type ValidationResult struct {
	Valid       bool        `json:"valid"`
	Explanation Explanation `json:"explanation"`
}
