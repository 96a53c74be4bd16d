package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"$425,000", 425000, true},
		{"425000", 425000, true},
		{"From $389K", 389000, true},
		{"$1.2M", 1200000, true},
		{"Call for pricing", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.InDelta(t, tt.want, got, 0.001, tt.in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$425,000", Format(425000))
	assert.Equal(t, "$0", Format(0))
	assert.Equal(t, "-$2,500", Format(-2500))
	assert.Equal(t, "$1,000,000", Format(999999.6))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+$1,250", FormatDelta(1250))
	assert.Equal(t, "-$300", FormatDelta(-300))
	assert.Equal(t, "Included", FormatDelta(0))
}
