// Package sample provides the placeholder frame the viewer shows until a
// real processing pipeline feeds it.
package sample

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// Width and Height of the placeholder frame.
	Width  = 640
	Height = 480

	caption = "Edge Detection Sample"
)

var (
	imageOnce sync.Once
	imageURI  string
	imageErr  error
)

// Image returns the placeholder frame as a PNG data URI. It is rendered
// once and cached.
func Image() (string, error) {
	imageOnce.Do(func() {
		imageURI, imageErr = EncodeDataURI(Render())
	})
	return imageURI, imageErr
}

// MustImage is Image for callers that treat a render failure as fatal.
func MustImage() string {
	uri, err := Image()
	if err != nil {
		panic(err)
	}
	return uri
}

// Render draws the placeholder: white captions centred on black.
func Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	drawCentered(img, caption, Height*50/100, 3)
	drawCentered(img, fmt.Sprintf("%dx%d", Width, Height), Height*60/100, 2)
	return img
}

// EncodeDataURI encodes img as a base64 PNG data URI.
func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// drawCentered draws text with its middle at (width/2, cy), upscaled from
// the 7x13 basic font by scale.
func drawCentered(dst *image.RGBA, text string, cy, scale int) {
	face := basicfont.Face7x13
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := ascent + metrics.Descent.Ceil()

	d := &font.Drawer{Face: face}
	textWidth := d.MeasureString(text).Ceil()

	textImg := image.NewRGBA(image.Rect(0, 0, textWidth, lineHeight))
	d.Dst = textImg
	d.Src = image.NewUniform(color.White)
	d.Dot = fixed.Point26_6{X: 0, Y: fixed.I(ascent)}
	d.DrawString(text)

	w, h := textWidth*scale, lineHeight*scale
	x := (dst.Bounds().Dx() - w) / 2
	y := cy - h/2
	target := image.Rect(x, y, x+w, y+h)

	draw.NearestNeighbor.Scale(dst, target, textImg, textImg.Bounds(), draw.Over, nil)
}
