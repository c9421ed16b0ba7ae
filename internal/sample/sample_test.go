package sample

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestImage_IsPNGDataURI(t *testing.T) {
	uri, err := Image()
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, prefix))
	if err != nil {
		t.Fatalf("payload is not base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("payload is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("expected %dx%d, got %dx%d", Width, Height, b.Dx(), b.Dy())
	}

	again, _ := Image()
	if again != uri {
		t.Fatalf("Image should be cached")
	}
}

func TestRender_DrawsCaption(t *testing.T) {
	img := Render()
	lit := 0
	for y := Height*50/100 - 20; y < Height*50/100+20; y++ {
		for x := 0; x < Width; x++ {
			if img.RGBAAt(x, y).R > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Fatalf("caption row has no lit pixels")
	}
	if c := img.RGBAAt(0, 0); c.R != 0 || c.A != 255 {
		t.Fatalf("background should be opaque black, got %+v", c)
	}
}

func TestStats_FixedValues(t *testing.T) {
	s := Stats()
	if s.FPS != 24.5 || s.Width != 640 || s.Height != 480 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if !s.HasProcessingTime() || *s.ProcessingTime != 42.3 {
		t.Fatalf("unexpected processing time %v", s.ProcessingTime)
	}
}

func TestFreshen_StaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	base := Stats()
	for i := 0; i < 1000; i++ {
		s := Freshen(base, rng)
		if s.FPS < 20 || s.FPS >= 30 {
			t.Fatalf("fps %v out of [20, 30)", s.FPS)
		}
		if *s.ProcessingTime < 30 || *s.ProcessingTime >= 60 {
			t.Fatalf("processing time %v out of [30, 60)", *s.ProcessingTime)
		}
		if s.Width != 640 || s.Height != 480 {
			t.Fatalf("resolution changed: %dx%d", s.Width, s.Height)
		}
	}
	if *base.ProcessingTime != 42.3 {
		t.Fatalf("Freshen mutated its input")
	}
}
