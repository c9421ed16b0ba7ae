package viewer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/bryanchriswhite/EdgeViewer/internal/frame"
)

var statsTemplate = template.Must(template.New("stats").Parse(`
<h3 style="margin-top: 0; color: #333;">Frame Statistics</h3>
<div style="display: grid; grid-template-columns: 1fr 1fr; gap: 10px;">
    <div>
        <strong>FPS:</strong> {{.FPS}}
    </div>
    <div>
        <strong>Resolution:</strong> {{.Resolution}}
    </div>
    {{- with .ProcessingTime}}
    <div>
        <strong>Processing Time:</strong> {{.}}ms
    </div>
    {{- end}}
</div>
`))

type statsView struct {
	FPS            string
	Resolution     string
	ProcessingTime string
}

func renderStats(stats frame.FrameStats) (string, error) {
	view := statsView{
		FPS:        fmt.Sprintf("%.2f", stats.FPS),
		Resolution: stats.Resolution(),
	}
	if stats.HasProcessingTime() {
		view.ProcessingTime = fmt.Sprintf("%.2f", *stats.ProcessingTime)
	}

	var buf bytes.Buffer
	if err := statsTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render stats: %w", err)
	}
	return buf.String(), nil
}
