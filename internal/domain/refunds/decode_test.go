package refunds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequests(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "JSON list",
			data: `[{"name":"John Doe","customerLocation":"US (PST)","signUpDate":"02/01/2020","requestSource":"phone",
				"investmentDate":"02/04/2020","investmentTime":"21:30","refundRequestDate":"03/05/2020","refundRequestTime":"19:00"}]`,
		},
		{
			name: "JSON object",
			data: `{"requests":[{"name":"John Doe","customerLocation":"US (PST)","signUpDate":"02/01/2020","requestSource":"phone",
				"investmentDate":"02/04/2020","investmentTime":"21:30","refundRequestDate":"03/05/2020","refundRequestTime":"19:00"}]}`,
		},
		{
			name: "YAML list",
			data: `
- name: John Doe
  customerLocation: US (PST)
  signUpDate: 02/01/2020
  requestSource: phone
  investmentDate: 02/04/2020
  investmentTime: "21:30"
  refundRequestDate: 03/05/2020
  refundRequestTime: "19:00"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequests([]byte(tt.data))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, RawRequest{
				Name:              "John Doe",
				CustomerLocation:  "US (PST)",
				Channel:           "phone",
				SignUpDate:        "02/01/2020",
				InvestmentDate:    "02/04/2020",
				InvestmentTime:    "21:30",
				RefundRequestDate: "03/05/2020",
				RefundRequestTime: "19:00",
			}, got[0])
		})
	}
}

func TestDecodeRequestsErrors(t *testing.T) {
	for name, data := range map[string]string{
		"empty":          "  ",
		"wrong shape":    `{"events": []}`,
		"invalid syntax": `[{"name": }`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRequests([]byte(data))
			require.Error(t, err)
		})
	}
}
