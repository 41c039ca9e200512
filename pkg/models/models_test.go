package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"number", `{"odds": 2.5}`, 2.5, false},
		{"string", `{"odds": "2.5"}`, 2.5, false},
		{"padded string", `{"odds": " 1.91 "}`, 1.91, false},
		{"empty string", `{"odds": ""}`, 0, true},
		{"word", `{"odds": "evens"}`, 0, true},
		{"bool", `{"odds": true}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CalcRequest
			err := json.Unmarshal([]byte(tt.input), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, req.Odds)
			assert.Equal(t, tt.want, float64(*req.Odds))
		})
	}
}

func TestCalcRequestOmittedFieldsStayNil(t *testing.T) {
	var req CalcRequest
	require.NoError(t, json.Unmarshal([]byte(`{"odds": 2}`), &req))
	assert.Nil(t, req.Prob)
	assert.Nil(t, req.Bankroll)
}

func TestEmpiricalInfoEncodesNullRate(t *testing.T) {
	data, err := json.Marshal(EmpiricalInfo{Adjusted: 0.5, Alpha: 0.6})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"empirical":null`)
}

func TestEmpiricalRequestProbForms(t *testing.T) {
	for _, body := range []string{`{"prob": 0.55}`, `{"prob": "0.55"}`} {
		var req EmpiricalRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.Equal(t, NumericString("0.55"), req.Prob, body)
	}

	var req EmpiricalRequest
	require.NoError(t, json.Unmarshal([]byte(`{"prob": null}`), &req))
	assert.Empty(t, req.Prob)

	assert.Error(t, json.Unmarshal([]byte(`{"prob": true}`), &req))

	data, err := json.Marshal(EmpiricalRequest{Prob: "0.55"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"prob":"0.55"`)
}
