package sample

import (
	"math/rand/v2"

	"github.com/bryanchriswhite/EdgeViewer/internal/frame"
)

const (
	// FPS and ProcessingTime of the sample stats record.
	FPS            = 24.5
	ProcessingTime = 42.3

	minFPS            = 20.0
	fpsSpread         = 10.0
	minProcessingTime = 30.0
	procSpread        = 30.0
)

// Stats returns the fixed stats shipped with the placeholder frame.
func Stats() frame.FrameStats {
	return frame.FrameStats{
		FPS:            FPS,
		Width:          Width,
		Height:         Height,
		ProcessingTime: frame.Millis(ProcessingTime),
	}
}

// Freshen returns a copy of stats with the frame rate drawn from [20, 30)
// and the processing time from [30, 60). Resolution is left alone.
func Freshen(stats frame.FrameStats, rng *rand.Rand) frame.FrameStats {
	out := stats
	out.FPS = minFPS + rng.Float64()*fpsSpread
	out.ProcessingTime = frame.Millis(minProcessingTime + rng.Float64()*procSpread)
	return out
}
