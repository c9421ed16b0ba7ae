package viewer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bryanchriswhite/EdgeViewer/internal/frame"
	"github.com/bryanchriswhite/EdgeViewer/internal/page"
)

const payload = "data:image/png;base64,iVBORw0KGgo="

func sampleStats() frame.FrameStats {
	return frame.FrameStats{FPS: 24.5, Width: 640, Height: 480, ProcessingTime: frame.Millis(42.3)}
}

func newViewer(t *testing.T, showStats bool, opts ...Option) (*page.Document, *Viewer) {
	t.Helper()
	doc := page.NewDefault("")
	v, err := New(doc, frame.ViewerConfig{ContainerID: "viewer-container", ShowStats: showStats}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return doc, v
}

func TestNew_MissingContainer(t *testing.T) {
	doc := page.NewDefault("")
	before := doc.String()

	v, err := New(doc, frame.ViewerConfig{ContainerID: "nope", ShowStats: true})
	if !errors.Is(err, ErrContainerNotFound) {
		t.Fatalf("expected ErrContainerNotFound, got %v", err)
	}
	if v != nil {
		t.Fatalf("expected nil viewer on failure")
	}
	if !strings.Contains(err.Error(), `"nope"`) {
		t.Fatalf("error should name the container: %v", err)
	}
	if after := doc.String(); after != before {
		t.Fatalf("failed construction modified the page")
	}
}

func TestNew_AttachesImageThenStats(t *testing.T) {
	doc, _ := newViewer(t, true)
	children := doc.GetElementByID("viewer-container").Children()
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	img, stats := children[0], children[1]
	if img.Tag() != "img" || stats.Tag() != "div" {
		t.Fatalf("unexpected order: %s, %s", img.Tag(), stats.Tag())
	}
	if class, _ := img.Attr("class"); class != "frame-image" {
		t.Fatalf("image class = %q", class)
	}
	if img.Style("max-width") != "100%" || img.Style("border") != "2px solid #333" {
		t.Fatalf("image not styled: %v", img.OuterHTML())
	}
	if class, _ := stats.Attr("class"); class != "frame-stats" {
		t.Fatalf("stats class = %q", class)
	}
}

func TestNew_NoStatsPanelWhenDisabled(t *testing.T) {
	doc, v := newViewer(t, false)
	children := doc.GetElementByID("viewer-container").Children()
	if len(children) != 1 || children[0].Tag() != "img" {
		t.Fatalf("expected only the image slot, got %d children", len(children))
	}

	v.LoadSampleFrame(payload, sampleStats())
	if v.StatsText() != "" {
		t.Fatalf("stats rendered while disabled: %q", v.StatsText())
	}
	if strings.Contains(doc.String(), "Frame Statistics") {
		t.Fatalf("stats panel reached the page while disabled")
	}
}

func TestLoadSampleFrame_StoresAndStamps(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, v := newViewer(t, true, WithClock(func() time.Time { return at }))

	if v.State() != StateEmpty {
		t.Fatalf("new viewer should be empty")
	}
	stats := sampleStats()
	v.LoadSampleFrame(payload, stats)

	got, ok := v.CurrentFrame()
	if !ok {
		t.Fatalf("expected a current frame")
	}
	if got.ImageData != payload {
		t.Fatalf("image data = %q", got.ImageData)
	}
	if got.Stats.FPS != stats.FPS || got.Stats.Width != 640 || got.Stats.Height != 480 || *got.Stats.ProcessingTime != 42.3 {
		t.Fatalf("stats = %+v", got.Stats)
	}
	if got.Timestamp != at.UnixMilli() {
		t.Fatalf("timestamp = %d, want %d", got.Timestamp, at.UnixMilli())
	}
	if v.ImageSource() != payload {
		t.Fatalf("image src = %q", v.ImageSource())
	}
	if v.State() != StateDisplaying {
		t.Fatalf("state = %s", v.State())
	}
}

func TestLoadSampleFrame_RealClock(t *testing.T) {
	_, v := newViewer(t, true)
	before := time.Now().UnixMilli()
	v.LoadSampleFrame(payload, sampleStats())
	after := time.Now().UnixMilli()

	got, _ := v.CurrentFrame()
	if got.Timestamp < before || got.Timestamp > after {
		t.Fatalf("timestamp %d outside [%d, %d]", got.Timestamp, before, after)
	}
}

func TestStatsPanel_Text(t *testing.T) {
	_, v := newViewer(t, true)
	v.LoadSampleFrame(payload, sampleStats())

	text := v.StatsText()
	for _, want := range []string{"Frame Statistics", "24.50", "640x480", "42.30ms"} {
		if !strings.Contains(text, want) {
			t.Fatalf("stats text missing %q: %q", want, text)
		}
	}
}

func TestStatsPanel_OmitsMissingProcessingTime(t *testing.T) {
	_, v := newViewer(t, true)
	v.LoadSampleFrame(payload, frame.FrameStats{FPS: 30, Width: 320, Height: 240})

	text := v.StatsText()
	if !strings.Contains(text, "30.00") || !strings.Contains(text, "320x240") {
		t.Fatalf("unexpected stats text %q", text)
	}
	if strings.Contains(text, "Processing Time") || strings.Contains(text, "ms") {
		t.Fatalf("processing time entry should be absent: %q", text)
	}
}

func TestClear(t *testing.T) {
	_, v := newViewer(t, true)
	v.LoadSampleFrame(payload, sampleStats())

	v.Clear()
	if _, ok := v.CurrentFrame(); ok {
		t.Fatalf("expected no current frame after Clear")
	}
	if v.ImageSource() != "" {
		t.Fatalf("image src = %q", v.ImageSource())
	}
	if strings.TrimSpace(v.StatsText()) != "" {
		t.Fatalf("stats not blanked: %q", v.StatsText())
	}
	if v.State() != StateEmpty {
		t.Fatalf("state = %s", v.State())
	}

	// idempotent
	v.Clear()
	if _, ok := v.CurrentFrame(); ok || v.ImageSource() != "" {
		t.Fatalf("second Clear changed state")
	}
}

func TestUpdateFrame_ReplacesPrevious(t *testing.T) {
	_, v := newViewer(t, true)
	first := frame.ProcessedFrame{ImageData: "data:first", Stats: sampleStats(), Timestamp: 1}
	second := frame.ProcessedFrame{ImageData: "data:second", Stats: frame.FrameStats{FPS: 12, Width: 10, Height: 20}, Timestamp: 2}

	v.UpdateFrame(first)
	v.UpdateFrame(second)

	got, ok := v.CurrentFrame()
	if !ok || got.ImageData != "data:second" || got.Timestamp != 2 {
		t.Fatalf("current frame = %+v", got)
	}
	if v.ImageSource() != "data:second" {
		t.Fatalf("image src = %q", v.ImageSource())
	}
	text := v.StatsText()
	if strings.Contains(text, "640x480") || !strings.Contains(text, "10x20") {
		t.Fatalf("stats panel kept old frame: %q", text)
	}
	if strings.Contains(text, "Processing Time") {
		t.Fatalf("processing time leaked from first frame: %q", text)
	}
}

func TestState_String(t *testing.T) {
	if StateEmpty.String() != "empty" || StateDisplaying.String() != "displaying" {
		t.Fatalf("unexpected state names")
	}
}
