package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentOf(t *testing.T) {
	got := PercentOf(MustMoney("63"), MustMoney("8.5"))
	assert.True(t, got.Equal(MustMoney("5.355")), "got %s", got)

	assert.True(t, PercentOf(MustMoney("100"), Zero()).IsZero())
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "5.36", Display(MustMoney("5.355")).StringFixed(2))
	assert.Equal(t, "21.65", Display(MustMoney("21.645")).StringFixed(2))
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "number", raw: `8.5`, want: "8.5"},
		{name: "string", raw: `"7"`, want: "7"},
		{name: "padded string", raw: `" 6.5 "`, want: "6.5"},
		{name: "empty string", raw: `""`, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "garbage", raw: `"abc"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(MustMoney(tt.want)), "got %s", got)
		})
	}
}
