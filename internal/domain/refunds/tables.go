package refunds

import (
	"fmt"
	"slices"
	"time"
)

const (
	DefaultOpeningHour = 9
	DefaultClosingHour = 17
	defaultTimePattern = "HH:mm"
)

// Location describes how dates recorded in one customer location are read.
type Location struct {
	Name        string
	Zone        *time.Location
	DatePattern string
	TimePattern string
	DateLayout  string
	TimeLayout  string
}

// NewLocation resolves the zone identifier and translates the date and time
// patterns. An empty timePattern means "HH:mm".
func NewLocation(name, zone, datePattern, timePattern string) (Location, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return Location{}, fmt.Errorf("location %q: load timezone %q: %w", name, zone, err)
	}
	dateLayout, err := LayoutFromPattern(datePattern)
	if err != nil {
		return Location{}, fmt.Errorf("location %q: %w", name, err)
	}
	if timePattern == "" {
		timePattern = defaultTimePattern
	}
	timeLayout, err := LayoutFromPattern(timePattern)
	if err != nil {
		return Location{}, fmt.Errorf("location %q: %w", name, err)
	}
	return Location{
		Name:        name,
		Zone:        loc,
		DatePattern: datePattern,
		TimePattern: timePattern,
		DateLayout:  dateLayout,
		TimeLayout:  timeLayout,
	}, nil
}

// TimeZoneMapping is keyed by customer location name. Locations are an open
// set so the key stays a plain string.
type TimeZoneMapping map[string]Location

// Lookup returns the entry for name or a ConfigurationLookupError.
func (m TimeZoneMapping) Lookup(name string) (Location, error) {
	loc, ok := m[name]
	if !ok {
		return Location{}, ConfigurationLookupError{Table: "timezone mapping", Key: name}
	}
	return loc, nil
}

// TimeLimitTable holds the allowed hours between investment and a
// registered refund request, per channel and policy.
type TimeLimitTable map[Channel]map[PolicyTag]int

// Hours returns the allowance for the pair or a ConfigurationLookupError.
func (t TimeLimitTable) Hours(channel Channel, policy PolicyTag) (int, error) {
	byPolicy, ok := t[channel]
	if !ok {
		return 0, ConfigurationLookupError{Table: "time limits", Key: string(channel)}
	}
	hours, ok := byPolicy[policy]
	if !ok {
		return 0, ConfigurationLookupError{Table: "time limits", Key: fmt.Sprintf("%s/%s", channel, policy)}
	}
	return hours, nil
}

// Set records an allowance, creating the channel row when needed.
func (t TimeLimitTable) Set(channel Channel, policy PolicyTag, hours int) {
	if t[channel] == nil {
		t[channel] = make(map[PolicyTag]int, 2)
	}
	t[channel][policy] = hours
}

// BusinessHours is the phone line's opening window in the canonical zone.
type BusinessHours struct {
	Opening int
	Closing int
	Weekend []time.Weekday
}

// DefaultBusinessHours is 09:00 to 17:00, Monday to Friday.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Opening: DefaultOpeningHour,
		Closing: DefaultClosingHour,
		Weekend: []time.Weekday{time.Saturday, time.Sunday},
	}
}

// IsBusinessDay reports whether day is outside the weekend.
func (h BusinessHours) IsBusinessDay(day time.Weekday) bool {
	return !slices.Contains(h.Weekend, day)
}

// Check validates the window bounds and that at least one business day exists.
func (h BusinessHours) Check() error {
	if h.Opening < 0 || h.Closing > 24 || h.Opening >= h.Closing {
		return fmt.Errorf("business hours %d-%d: opening must precede closing within 0-24", h.Opening, h.Closing)
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if h.IsBusinessDay(d) {
			return nil
		}
	}
	return fmt.Errorf("business hours: weekend covers every day")
}

// Policy is the configuration injected into the Normalizer and Validator.
type Policy struct {
	Canonical     *time.Location
	Cutoff        time.Time
	Locations     TimeZoneMapping
	TimeLimits    TimeLimitTable
	BusinessHours BusinessHours
}

// ParseCutoff reads a day/month/year cutoff date as a civil date.
func ParseCutoff(value string) (time.Time, error) {
	t, err := time.Parse(CanonicalDateLayout, value)
	if err != nil {
		return time.Time{}, ParseError{Field: "policy cutoff", Value: value, Layout: CanonicalDateLayout, Err: err}
	}
	return t, nil
}

// Check reports the first structural problem with the policy: a missing
// canonical zone, a missing time limit or bad business hours.
func (p Policy) Check() error {
	if p.Canonical == nil {
		return fmt.Errorf("policy: canonical timezone is required")
	}
	if p.Cutoff.IsZero() {
		return fmt.Errorf("policy: cutoff date is required")
	}
	for _, ch := range Channels() {
		for _, tag := range PolicyTags() {
			hours, err := p.TimeLimits.Hours(ch, tag)
			if err != nil {
				return fmt.Errorf("policy: %w", err)
			}
			if hours < 0 {
				return fmt.Errorf("policy: time limit %s/%s is negative", ch, tag)
			}
		}
	}
	return p.BusinessHours.Check()
}

// Classify returns PolicyNew when signUp falls strictly after the cutoff.
// A sign-up on the cutoff date itself stays on the old policy.
func (p Policy) Classify(signUp time.Time) PolicyTag {
	if civilDate(signUp).After(civilDate(p.Cutoff)) {
		return PolicyNew
	}
	return PolicyOld
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
