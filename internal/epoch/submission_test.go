package epoch

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validAgents = `{
  "0x1111111111111111111111111111111111111111": {"agentId": "alpha", "prediction": 117520.5},
  "0x2222222222222222222222222222222222222222": {"agentId": "beta", "range": [115000, 120000], "confidence": 0.85},
  "0x3333333333333333333333333333333333333333": {"agentId": "gamma", "range": [116000, 119000]}
}`

func TestParseSubmissions(t *testing.T) {
	subs, err := ParseSubmissions([]byte(validAgents))
	require.NoError(t, err)
	require.Len(t, subs, 3)

	// Sorted by wallet bytes regardless of JSON map order.
	for i := 1; i < len(subs); i++ {
		assert.Negative(t, bytes.Compare(subs[i-1].Wallet[:], subs[i].Wallet[:]))
	}

	assert.Equal(t, PointPrediction, subs[0].Kind)
	assert.Equal(t, "alpha", subs[0].AgentID)
	assert.Equal(t, 117520.5, subs[0].Value)

	assert.Equal(t, RangePrediction, subs[1].Kind)
	assert.Equal(t, 0.85, subs[1].Confidence)

	// Confidence omitted: defaults to 0.8.
	assert.Equal(t, 0.8, subs[2].Confidence)
	assert.Equal(t, common.HexToAddress("0x3333333333333333333333333333333333333333"), subs[2].Wallet)
}

func TestParseSubmissionsRejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"malformed json", `{`},
		{"bad wallet", `{"0xnope": {"prediction": 1}}`},
		{"short wallet", `{"0x1111": {"prediction": 1}}`},
		{"both variants", `{"0x1111111111111111111111111111111111111111": {"prediction": 1, "range": [1, 2]}}`},
		{"neither variant", `{"0x1111111111111111111111111111111111111111": {"agentId": "x"}}`},
		{"negative prediction", `{"0x1111111111111111111111111111111111111111": {"prediction": -1}}`},
		{"huge prediction", `{"0x1111111111111111111111111111111111111111": {"prediction": 1e12}}`},
		{"inverted range", `{"0x1111111111111111111111111111111111111111": {"range": [5, 1]}}`},
		{"three-element range", `{"0x1111111111111111111111111111111111111111": {"range": [1, 2, 3]}}`},
		{"confidence above one", `{"0x1111111111111111111111111111111111111111": {"range": [1, 2], "confidence": 1.5}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSubmissions([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}
