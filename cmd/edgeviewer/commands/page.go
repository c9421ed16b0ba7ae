package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/bryanchriswhite/EdgeViewer/internal/bootstrap"
	"github.com/bryanchriswhite/EdgeViewer/internal/config"
	"github.com/bryanchriswhite/EdgeViewer/internal/logger"
	"github.com/bryanchriswhite/EdgeViewer/internal/page"
	"github.com/spf13/viper"
)

// loadConfig reads the config file, applies --port and --log-level
// without persisting them, and points the logger at logOut.
func loadConfig(logOut io.Writer) (*config.Manager, *config.Config, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	cfg := configMgr.Get()
	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			cfg.ServerPort = port
		}
	}
	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			cfg.LogLevel = level
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger.InitWriter(cfg.LogLevel, cfg.LogPretty, logOut)
	return configMgr, cfg, nil
}

// loadPage returns the host page at path, or the stock page when empty.
func loadPage(path, title string) (*page.Document, error) {
	if path == "" {
		return page.NewDefault(title), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open host page: %w", err)
	}
	defer f.Close()

	doc, err := page.Parse(f)
	if err != nil {
		return nil, err
	}
	if title != "" {
		doc.SetTitle(title)
	}
	return doc, nil
}

func bootstrapOptions(cfg *config.Config) bootstrap.Options {
	opts := bootstrap.DefaultOptions()
	opts.Viewer = cfg.Viewer
	opts.RefreshButtonID = cfg.RefreshButtonID
	opts.ReadbackDelay = cfg.ReadbackDelay
	return opts
}
