package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender_WritesBootstrappedPage(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("readback_delay: 10ms\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var out, logs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&logs)
	rootCmd.SetArgs([]string{"render", "--config", cfgPath})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}

	html := out.String()
	for _, want := range []string{`id="viewer-container"`, `src="data:image/png;base64,`, "24.50", "640x480", "42.30ms"} {
		if !strings.Contains(html, want) {
			t.Fatalf("rendered page missing %q", want)
		}
	}
	if !strings.Contains(logs.String(), "Current frame loaded") {
		t.Fatalf("readback not logged: %s", logs.String())
	}
	if strings.Contains(html, "Current frame loaded") {
		t.Fatalf("logs mixed into the page")
	}
}

func TestRender_MissingContainerShowsNoViewer(t *testing.T) {
	dir := t.TempDir()
	pagePath := filepath.Join(dir, "page.html")
	if err := os.WriteFile(pagePath, []byte(`<html><body><div id="other"></div></body></html>`), 0644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.html")

	rootCmd.SetArgs([]string{"render", "--config", filepath.Join(dir, "config.yaml"), "--page", pagePath, "--output", outPath})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		renderPage, renderOutput = "", ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "frame-image") {
		t.Fatalf("viewer attached without a container")
	}
}
