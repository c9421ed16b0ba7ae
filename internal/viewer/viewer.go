// Package viewer renders a processed frame and its statistics into a
// container element of a page.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/bryanchriswhite/EdgeViewer/internal/frame"
	"github.com/bryanchriswhite/EdgeViewer/internal/logger"
	"github.com/bryanchriswhite/EdgeViewer/internal/page"
	"github.com/rs/zerolog"
)

// ErrContainerNotFound is returned by New when the configured container
// does not exist in the page.
var ErrContainerNotFound = errors.New("container not found")

// State is the observable state of a Viewer.
type State int

const (
	// StateEmpty is the initial state, and the state after Clear.
	StateEmpty State = iota
	// StateDisplaying means a frame is current.
	StateDisplaying
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDisplaying:
		return "displaying"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Option customizes a Viewer.
type Option func(*Viewer)

// WithClock sets the time source used to stamp frames in LoadSampleFrame.
func WithClock(now func() time.Time) Option {
	return func(v *Viewer) {
		v.now = now
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(v *Viewer) {
		v.log = l
	}
}

// Viewer owns an image slot and an optional stats panel inside a container.
// It is not safe for concurrent use; drive it from the page loop.
type Viewer struct {
	config    frame.ViewerConfig
	container *page.Element
	image     *page.Element
	stats     *page.Element

	current *frame.ProcessedFrame

	now func() time.Time
	log *zerolog.Logger
}

// New resolves config.ContainerID in doc and attaches the display slots to it.
func New(doc *page.Document, config frame.ViewerConfig, opts ...Option) (*Viewer, error) {
	container := doc.GetElementByID(config.ContainerID)
	if container == nil {
		return nil, fmt.Errorf("container with id %q: %w", config.ContainerID, ErrContainerNotFound)
	}

	v := &Viewer{
		config:    config,
		container: container,
		now:       time.Now,
		log:       logger.WithComponent("viewer"),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.image = createImageElement(doc)
	v.stats = createStatsElement(doc)

	v.container.AppendChild(v.image)
	if v.config.ShowStats {
		v.container.AppendChild(v.stats)
	}

	v.log.Debug().
		Str("container", config.ContainerID).
		Bool("show_stats", config.ShowStats).
		Msg("Viewer attached")
	return v, nil
}

func createImageElement(doc *page.Document) *page.Element {
	img := doc.CreateElement("img")
	img.SetClass("frame-image")
	img.SetAttr("alt", "Processed frame")
	img.SetStyle("max-width", "100%")
	img.SetStyle("height", "auto")
	img.SetStyle("border", "2px solid #333")
	img.SetStyle("border-radius", "8px")
	return img
}

func createStatsElement(doc *page.Document) *page.Element {
	div := doc.CreateElement("div")
	div.SetClass("frame-stats")
	div.SetStyle("margin-top", "20px")
	div.SetStyle("padding", "15px")
	div.SetStyle("background-color", "#f5f5f5")
	div.SetStyle("border-radius", "8px")
	div.SetStyle("font-family", "monospace")
	return div
}

// Config returns the configuration the viewer was built with.
func (v *Viewer) Config() frame.ViewerConfig {
	return v.config
}

// UpdateFrame makes f the current frame and redraws the display.
func (v *Viewer) UpdateFrame(f frame.ProcessedFrame) {
	v.current = &f
	v.image.SetAttr("src", f.ImageData)

	if v.config.ShowStats {
		v.updateStats(f.Stats)
	}
}

func (v *Viewer) updateStats(stats frame.FrameStats) {
	markup, err := renderStats(stats)
	if err != nil {
		v.log.Error().Err(err).Msg("Failed to render stats")
		return
	}
	if err := v.stats.SetInnerHTML(markup); err != nil {
		v.log.Error().Err(err).Msg("Failed to update stats panel")
	}
}

// LoadSampleFrame wraps a raw payload and stats in a frame stamped with the
// current time and displays it.
func (v *Viewer) LoadSampleFrame(imageData string, stats frame.FrameStats) {
	v.UpdateFrame(frame.New(imageData, stats, v.now()))
}

// Clear empties the image slot and stats panel. Calling it on an empty
// viewer is a no-op.
func (v *Viewer) Clear() {
	v.image.SetAttr("src", "")
	if err := v.stats.SetInnerHTML(""); err != nil {
		v.log.Error().Err(err).Msg("Failed to clear stats panel")
	}
	v.current = nil
}

// CurrentFrame returns the frame on display, if any.
func (v *Viewer) CurrentFrame() (frame.ProcessedFrame, bool) {
	if v.current == nil {
		return frame.ProcessedFrame{}, false
	}
	return *v.current, true
}

// State reports whether a frame is on display.
func (v *Viewer) State() State {
	if v.current == nil {
		return StateEmpty
	}
	return StateDisplaying
}

// ImageSource returns the src of the image slot.
func (v *Viewer) ImageSource() string {
	src, _ := v.image.Attr("src")
	return src
}

// StatsText returns the visible text of the stats panel.
func (v *Viewer) StatsText() string {
	return v.stats.TextContent()
}
