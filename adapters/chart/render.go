package chart

import (
	"bytes"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"

	apperrors "immunotrial/internal/errors"
)

// Renderer draws the analysis charts as PNG images. Charts are rendered once
// into memory and served as static bytes, so there is no pooling here.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a renderer with the standard chart dimensions.
func NewRenderer() *Renderer {
	return &Renderer{width: 640, height: 480}
}

var (
	colorText    = color.RGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff}
	colorMuted   = color.RGBA{R: 0x75, G: 0x75, B: 0x75, A: 0xff}
	colorGrid    = color.RGBA{R: 0xe3, G: 0xe3, B: 0xe3, A: 0xff}
	colorBoxLine = color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff}
	colorBoxFill = color.RGBA{R: 0xdc, G: 0xe6, B: 0xf2, A: 0xff}
	colorMedian  = color.RGBA{R: 0xdd, G: 0x84, B: 0x52, A: 0xff}
)

// placeholder renders a chart frame with a note instead of data, so empty
// stores still produce a valid image for every chart URL.
func (r *Renderer) placeholder(title, note string) ([]byte, error) {
	dc := gg.NewContext(r.width, r.height)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(colorText)
	dc.DrawStringAnchored(title, float64(r.width)/2, 24, 0.5, 0.5)
	dc.SetColor(colorMuted)
	dc.DrawStringAnchored(note, float64(r.width)/2, float64(r.height)/2, 0.5, 0.5)

	return encodePNG(dc)
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(&buf, dc.Image()); err != nil {
		return nil, apperrors.RenderError("failed to encode chart PNG", err)
	}
	return buf.Bytes(), nil
}
