// Package composite blends infrared imagery with a full-colour underlay.
package composite

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/anthonynsimon/bild/blend"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Black is the default background for non-transparent output.
var Black = color.NRGBA{A: 255}

// ParseColor parses a hex colour such as "#000000", "#fff" or "1a2b3c" into
// an opaque colour.
func ParseColor(value string) (color.NRGBA, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}

	c, err := colorful.Hex(value)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", value, err)
	}

	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// OverBackground draws img over a solid background of the same size.
func OverBackground(img image.Image, background color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), background)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

// Screen blends overlay onto underlay with the screen blend mode, so that
// bright cloud tops lighten the underlay and dark pixels leave it unchanged.
// The overlay is resized to the underlay when their sizes differ.
func Screen(underlay, overlay image.Image) *image.NRGBA {
	ub, ob := underlay.Bounds(), overlay.Bounds()
	if ub.Dx() != ob.Dx() || ub.Dy() != ob.Dy() {
		overlay = imaging.Resize(overlay, ub.Dx(), ub.Dy(), imaging.Lanczos)
	}
	return imaging.Clone(blend.Screen(underlay, overlay))
}
