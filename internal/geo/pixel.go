package geo

import "math"

// LongitudeFromX converts an equirectangular pixel column to a longitude.
func LongitudeFromX(x, width int) float64 {
	return float64(x)/float64(width)*Pi2 - math.Pi
}

// LatitudeFromY converts an equirectangular pixel row to a latitude.
func LatitudeFromY(y, height int) float64 {
	return float64(height-y)/float64(height)*math.Pi - PiOver2
}

// ScaleToWidth converts a longitude to a fractional pixel column.
func ScaleToWidth(angle float64, width int) float64 {
	return float64(width) * (angle + math.Pi) / Pi2
}

// ScaleToHeight converts a latitude to a fractional pixel row.
func ScaleToHeight(angle float64, height int) float64 {
	return float64(height) - float64(height)*(angle+PiOver2)/math.Pi
}

// ToX converts a longitude to the nearest pixel column.
func ToX(angle float64, width int) int {
	return int(math.Round(ScaleToWidth(angle, width)))
}

// ToY converts a latitude to the nearest pixel row.
func ToY(angle float64, height int) int {
	return int(math.Round(ScaleToHeight(angle, height)))
}

// PixelRange is a pair of pixel coordinates with Start <= End.
type PixelRange struct {
	Start int
	End   int
}

// Len is the number of pixels covered by the range.
func (p PixelRange) Len() int {
	return p.End - p.Start
}

// PixelRangeX converts a longitude range to a column range on a canvas of the
// given width.
func PixelRangeX(r Range, width int) PixelRange {
	return newPixelRange(ToX(r.Start, width), ToX(r.End, width))
}

// PixelRangeY converts a latitude range to a row range on a canvas of the
// given height.
func PixelRangeY(r Range, height int) PixelRange {
	return newPixelRange(ToY(r.Start, height), ToY(r.End, height))
}

func newPixelRange(start, end int) PixelRange {
	if start > end {
		start, end = end, start
	}
	return PixelRange{Start: start, End: end}
}
