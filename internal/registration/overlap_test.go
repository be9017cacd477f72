package registration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ironsheep/geostitch/internal/geo"
	"github.com/ironsheep/geostitch/internal/satellite"
)

const precision = 1e-6

func assertRange(t *testing.T, got ProjectionRange, start, end float64) {
	t.Helper()
	assert.InDelta(t, start, geo.Degrees(got.Range.Start), precision, "start")
	assert.InDelta(t, end, geo.Degrees(got.Range.End), precision, "end")
}

func TestOverlap_Goes17Himawari(t *testing.T) {
	goes17 := definition("GOES-17", 140, -50)
	himawari := definition("Himawari-8", 60, -140)

	calc := NewOverlapCalculator([]*satellite.Definition{goes17, himawari})

	got := calc.NonOverlappingRange(goes17)
	assertRange(t, got, 180, 310)
	assert.True(t, got.OverlappingLeft)
	assert.False(t, got.OverlappingRight)
}

func TestOverlap_SingleSatellite(t *testing.T) {
	goes16 := definition("GOES-16", -156.2995, 6.2995)

	got := NewOverlapCalculator([]*satellite.Definition{goes16}).NonOverlappingRange(goes16)
	assertRange(t, got, -156.2995, 6.2995)
	assert.False(t, got.OverlappingLeft || got.OverlappingRight)
}

func TestOverlap_NonOverlapping(t *testing.T) {
	goes16 := definition("GOES-16", -156.2995, 6.2995)
	other := definition("other", 60, 120)
	calc := NewOverlapCalculator([]*satellite.Definition{goes16, other})

	assertRange(t, calc.NonOverlappingRange(goes16), -156.2995, 6.2995)
	assertRange(t, calc.NonOverlappingRange(other), 60, 120)
}

func TestOverlap_Pairs(t *testing.T) {
	tests := []struct {
		name                   string
		first, second          [2]float64
		firstStart, firstEnd   float64
		secondStart, secondEnd float64
	}{
		{"single with wrap", [2]float64{-150, 10}, [2]float64{140, -50}, -100, 10, 140, 260},
		{"overlap right", [2]float64{-155, 5}, [2]float64{-15, 140}, -155, -5, -5, 140},
		{"single without wrap", [2]float64{-100, 0}, [2]float64{-50, 150}, -100, -25, -25, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := definition("first", tt.first[0], tt.first[1])
			second := definition("second", tt.second[0], tt.second[1])
			calc := NewOverlapCalculator([]*satellite.Definition{second, first})

			a := calc.NonOverlappingRange(first)
			b := calc.NonOverlappingRange(second)

			assertRange(t, a, tt.firstStart, tt.firstEnd)
			assertRange(t, b, tt.secondStart, tt.secondEnd)
		})
	}
}

func TestOverlap_Both(t *testing.T) {
	first := definition("first", -150, 10)
	second := definition("second", 140, -50)
	third := definition("third", 0, 60)
	calc := NewOverlapCalculator([]*satellite.Definition{first, second, third})

	a := calc.NonOverlappingRange(first)
	assertRange(t, a, -100, 5)
	assert.True(t, a.OverlappingLeft)
	assert.True(t, a.OverlappingRight)

	assertRange(t, calc.NonOverlappingRange(second), 140, 260)
	assertRange(t, calc.NonOverlappingRange(third), 5, 60)
}
