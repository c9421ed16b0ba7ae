package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bryanchriswhite/EdgeViewer/internal/bootstrap"
	"github.com/bryanchriswhite/EdgeViewer/internal/page"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the bootstrapped page once",
	Long: `Bootstrap the frame viewer into the host page and write the resulting
HTML without starting a server.`,
	Example: `  # Print the page to stdout
  edgeviewer render

  # Write it to a file
  edgeviewer render --output viewer.html`,
	RunE: runRender,
}

var (
	renderPage   string
	renderOutput string
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderPage, "page", "", "host page HTML file (default is the built-in page)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (default is stdout)")
}

func runRender(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	doc, err := loadPage(renderPage, cfg.PageTitle)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := page.NewLoop()
	go loop.Run(ctx)

	session := bootstrap.Run(loop, doc, bootstrapOptions(cfg))
	loop.FireReady()
	<-session.ReadbackDone()

	var (
		html    string
		initErr error
	)
	if err := loop.Do(ctx, func() {
		html = doc.String()
		initErr = session.Err
	}); err != nil {
		return err
	}
	if initErr != nil {
		// the page still carries the error message; render it anyway
		cmd.PrintErrf("warning: %v\n", initErr)
	}

	var out io.Writer = cmd.OutOrStdout()
	if renderOutput != "" {
		f, err := os.Create(renderOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	_, err = io.WriteString(out, html)
	return err
}
