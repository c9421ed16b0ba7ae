// Package bootstrap wires a viewer into a host page once the page is ready.
package bootstrap

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bryanchriswhite/EdgeViewer/internal/frame"
	"github.com/bryanchriswhite/EdgeViewer/internal/logger"
	"github.com/bryanchriswhite/EdgeViewer/internal/page"
	"github.com/bryanchriswhite/EdgeViewer/internal/sample"
	"github.com/bryanchriswhite/EdgeViewer/internal/viewer"
	"github.com/rs/zerolog"
)

// ErrorMessage replaces the container content when the viewer cannot start.
const ErrorMessage = `<p style="color: red; padding: 20px;">Failed to initialize viewer. Check console for details.</p>`

// Options controls what Run builds.
type Options struct {
	Viewer          frame.ViewerConfig
	RefreshButtonID string
	ReadbackDelay   time.Duration

	// ImageData and Stats seed the first frame. Zero values use the
	// package sample.
	ImageData string
	Stats     *frame.FrameStats

	// Image produces the payload when ImageData is empty. Defaults to
	// sample.Image.
	Image func() (string, error)

	Rand   *rand.Rand
	Logger *zerolog.Logger
	Clock  func() time.Time
}

// DefaultOptions mirrors the stock host page.
func DefaultOptions() Options {
	return Options{
		Viewer: frame.ViewerConfig{
			ContainerID: "viewer-container",
			ShowStats:   true,
			AutoUpdate:  false,
		},
		RefreshButtonID: "refresh-btn",
		ReadbackDelay:   time.Second,
	}
}

// Session is the result of one bootstrap. Its fields are written on the
// page loop and must only be read there.
type Session struct {
	Viewer *viewer.Viewer
	Err    error

	// Started is set once the ready handler has run.
	Started bool

	readback chan struct{}
}

// ReadbackDone is closed after the delayed readback has run, or right
// away when the viewer failed to start.
func (s *Session) ReadbackDone() <-chan struct{} {
	return s.readback
}

// Run registers the bootstrap sequence as a ready handler on loop.
func Run(loop *page.Loop, doc *page.Document, opts Options) *Session {
	s := &Session{readback: make(chan struct{})}
	log := opts.Logger
	if log == nil {
		log = logger.WithComponent("bootstrap")
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	ok := loop.OnReady(func() {
		s.Started = true
		start(loop, doc, opts, s, log, rng)
	})
	if !ok {
		log.Warn().Msg("Page already ready, viewer will not start")
	}
	return s
}

func start(loop *page.Loop, doc *page.Document, opts Options, s *Session, log *zerolog.Logger, rng *rand.Rand) {
	log.Info().Msg("Edge Detector Web Viewer initializing...")

	viewerOpts := []viewer.Option{}
	if opts.Clock != nil {
		viewerOpts = append(viewerOpts, viewer.WithClock(opts.Clock))
	}

	fail := func(err error) {
		s.Err = err
		close(s.readback)
		log.Error().Err(err).Msg("Failed to initialize viewer")
		if container := doc.GetElementByID(opts.Viewer.ContainerID); container != nil {
			if err := container.SetInnerHTML(ErrorMessage); err != nil {
				log.Error().Err(err).Msg("Failed to show error message")
			}
		}
	}

	imageData := opts.ImageData
	if imageData == "" {
		render := opts.Image
		if render == nil {
			render = sample.Image
		}
		data, err := render()
		if err != nil {
			fail(fmt.Errorf("sample image: %w", err))
			return
		}
		imageData = data
	}

	v, err := viewer.New(doc, opts.Viewer, viewerOpts...)
	if err != nil {
		fail(err)
		return
	}
	s.Viewer = v

	stats := sample.Stats()
	if opts.Stats != nil {
		stats = *opts.Stats
	}

	v.LoadSampleFrame(imageData, stats)
	log.Info().Msg("Frame viewer initialized successfully")

	if btn := doc.GetElementByID(opts.RefreshButtonID); btn != nil {
		btn.AddEventListener("click", func(page.Event) {
			log.Info().Msg("Refreshing frame...")
			v.LoadSampleFrame(imageData, sample.Freshen(stats, rng))
		})
	}

	loop.AfterFunc(opts.ReadbackDelay, func() {
		defer close(s.readback)
		current, ok := v.CurrentFrame()
		if !ok {
			return
		}
		ev := log.Info().
			Str("timestamp", current.Time().UTC().Format(time.RFC3339Nano)).
			Float64("fps", current.Stats.FPS).
			Int("width", current.Stats.Width).
			Int("height", current.Stats.Height)
		if current.Stats.HasProcessingTime() {
			ev = ev.Float64("processing_time_ms", *current.Stats.ProcessingTime)
		}
		ev.Msg("Current frame loaded")
	})
}
