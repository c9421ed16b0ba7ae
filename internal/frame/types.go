// Package frame holds the records shared by the viewer and its callers.
package frame

import (
	"fmt"
	"time"
)

// FrameStats describes how a frame was produced.
type FrameStats struct {
	FPS    float64 `json:"fps" yaml:"fps"`
	Width  int     `json:"width" yaml:"width"`
	Height int     `json:"height" yaml:"height"`

	// ProcessingTime is in milliseconds; nil when not reported.
	ProcessingTime *float64 `json:"processingTime,omitempty" yaml:"processing_time,omitempty"`
}

// HasProcessingTime reports whether a processing duration was recorded.
func (s FrameStats) HasProcessingTime() bool {
	return s.ProcessingTime != nil
}

// Resolution formats the frame size as "<width>x<height>".
func (s FrameStats) Resolution() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Millis returns a pointer to ms, for filling FrameStats.ProcessingTime.
func Millis(ms float64) *float64 {
	return &ms
}

// ProcessedFrame is one displayed image with its stats and load time.
// A new frame replaces the previous one wholesale.
type ProcessedFrame struct {
	ImageData string     `json:"imageData"`
	Stats     FrameStats `json:"stats"`
	Timestamp int64      `json:"timestamp"` // ms since epoch
}

// New stamps a frame with the given time.
func New(imageData string, stats FrameStats, at time.Time) ProcessedFrame {
	return ProcessedFrame{
		ImageData: imageData,
		Stats:     stats,
		Timestamp: at.UnixMilli(),
	}
}

// Time returns the frame timestamp as a time.Time.
func (f ProcessedFrame) Time() time.Time {
	return time.UnixMilli(f.Timestamp)
}

// ViewerConfig configures a viewer instance.
type ViewerConfig struct {
	ContainerID string `json:"containerId" yaml:"container_id" mapstructure:"container_id"`
	ShowStats   bool   `json:"showStats" yaml:"show_stats" mapstructure:"show_stats"`

	// AutoUpdate is carried through configuration but nothing acts on it yet.
	AutoUpdate bool `json:"autoUpdate" yaml:"auto_update" mapstructure:"auto_update"`
}
