package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceIdentity(t *testing.T) {
	assert.Equal(t, 0.0, Distance(6.5244, 3.3792, 6.5244, 3.3792))
}

func TestDistanceSymmetry(t *testing.T) {
	a := Distance(6.5244, 3.3792, 6.4281, 3.4219)
	b := Distance(6.4281, 3.4219, 6.5244, 3.3792)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceOneDegreeMeridian(t *testing.T) {
	// 1 degree of latitude at the equator, roughly 111.32 km.
	d := Distance(0, 0, 1, 0)
	assert.InEpsilon(t, 111320, d, 0.01)
}

func TestDistanceShortRange(t *testing.T) {
	// ~100m apart along a meridian: 0.0009 degrees of latitude.
	d := Distance(6.5244, 3.3792, 6.5253, 3.3792)
	assert.InDelta(t, 100, d, 2)
}

func TestDistanceNonFinite(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"nan lat", math.NaN(), 0, 1, 1},
		{"nan lon", 0, math.NaN(), 1, 1},
		{"inf issuer lat", 0, 0, math.Inf(1), 1},
		{"neg inf issuer lon", 0, 0, 1, math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, math.IsInf(Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2), 1))
		})
	}
}
