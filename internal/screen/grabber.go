// Package screen continuously samples a region of the display and emits its
// dominant color. Each tick captures a bitmap, boosts saturation, downsamples,
// and reduces the pixels to a single centroid color.
package screen

import (
	"errors"
	"image"

	"github.com/kbinani/screenshot"
)

// Grabber captures screen content. The real implementation sits on the
// platform screenshot API; tests substitute canned images.
type Grabber interface {
	Capture(region image.Rectangle) (image.Image, error)
	FullBounds() (image.Rectangle, error)
}

// displayGrabber captures from the primary display.
type displayGrabber struct{}

// NewDisplayGrabber returns a Grabber over the primary display.
func NewDisplayGrabber() Grabber {
	return displayGrabber{}
}

func (displayGrabber) Capture(region image.Rectangle) (image.Image, error) {
	return screenshot.CaptureRect(region)
}

func (displayGrabber) FullBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, errors.New("no active displays")
	}
	return screenshot.GetDisplayBounds(0), nil
}
