package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLikes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      any
		want    int
		ok      bool
		wantErr bool
	}{
		{"absent", nil, 0, false, false},
		{"json number", float64(9000), 9000, true, false},
		{"zero", float64(0), 0, true, false},
		{"int", 4, 4, true, false},
		{"numeric string", " 12 ", 12, true, false},
		{"json.Number", json.Number("7"), 7, true, false},
		{"fraction", 3.5, 0, false, false},
		{"word", "lots", 0, false, false},
		{"bool", true, 0, false, false},
		{"object", map[string]any{"n": 1}, 0, false, false},
		{"beyond int32", float64(3000000000), 3000000000, true, false},
		{"max exact", float64(1<<53 - 1), 1<<53 - 1, true, false},
		{"beyond exact range", 1e18, 0, false, true},
		{"infinite string", "Inf", 0, false, false},
		{"negative", float64(-1), 0, false, true},
		{"negative string", "-3", 0, false, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok, err := parseLikes(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
