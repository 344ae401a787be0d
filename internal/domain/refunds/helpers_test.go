package refunds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	locationPST = "US (PST)"
	locationCET = "Europe (CET)"
	locationGMT = "Europe (GMT)"
)

func testPolicy(t *testing.T) Policy {
	t.Helper()

	canonical, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	pst, err := NewLocation(locationPST, "America/Los_Angeles", "MM/DD/YYYY", "")
	require.NoError(t, err)
	cet, err := NewLocation(locationCET, "Europe/Paris", "DD/MM/YYYY", "")
	require.NoError(t, err)
	gmt, err := NewLocation(locationGMT, "Europe/London", "DD/MM/YYYY", "HH:mm")
	require.NoError(t, err)

	cutoff, err := ParseCutoff("01/02/2020")
	require.NoError(t, err)

	limits := TimeLimitTable{}
	limits.Set(ChannelPhone, PolicyOld, 4)
	limits.Set(ChannelPhone, PolicyNew, 24)
	limits.Set(ChannelWebApp, PolicyOld, 8)
	limits.Set(ChannelWebApp, PolicyNew, 16)

	policy := Policy{
		Canonical: canonical,
		Cutoff:    cutoff,
		Locations: TimeZoneMapping{
			locationPST: pst,
			locationCET: cet,
			locationGMT: gmt,
		},
		TimeLimits:    limits,
		BusinessHours: DefaultBusinessHours(),
	}
	require.NoError(t, policy.Check())
	return policy
}

// ukTime parses a canonical "DD/MM/YYYY HH:mm" value in London time.
func ukTime(t *testing.T, value string) time.Time {
	t.Helper()
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	parsed, err := time.ParseInLocation(CanonicalDateTimeLayout, value, london)
	require.NoError(t, err)
	return parsed
}

func ukDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(CanonicalDateLayout, value)
	require.NoError(t, err)
	return parsed
}
