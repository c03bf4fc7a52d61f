package screen

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/smazurov/lumenode/internal/protocol"
	"golang.org/x/image/draw"
)

const (
	saturationBoost = 3.0
	sampleSize      = 100
)

// saturate returns a copy of img with every pixel's HSV saturation scaled by
// factor, capped at full saturation. Washed-out frames would otherwise pull
// the centroid toward gray.
func saturate(img image.Image, factor float64) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				// Fully transparent pixel, leave it black.
				continue
			}
			h, s, v := c.Hsv()
			boosted := colorful.Hsv(h, math.Min(s*factor, 1), v)
			r, g, b := boosted.RGB255()
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return out
}

// downsample scales img to size x size so the clustering cost stays bounded
// regardless of the capture resolution.
func downsample(img image.Image, size int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(out, out.Bounds(), img, img.Bounds(), draw.Over, nil)
	return out
}

// dominantColor reduces an image to its single k-means centroid, rounded to
// integer channels.
func dominantColor(img image.Image) (protocol.Color, error) {
	bounds := img.Bounds()
	obs := make(clusters.Observations, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			obs = append(obs, clusters.Coordinates{
				float64(r >> 8),
				float64(g >> 8),
				float64(b >> 8),
			})
		}
	}

	km := kmeans.New()
	cl, err := km.Partition(obs, 1)
	if err != nil {
		return protocol.Color{}, fmt.Errorf("clustering pixels: %w", err)
	}
	center := cl[0].Center
	return protocol.NewColor(
		int(math.Round(center[0])),
		int(math.Round(center[1])),
		int(math.Round(center[2])),
	), nil
}
