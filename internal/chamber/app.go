package chamber

import (
	"github.com/MakeNowJust/heredoc/v2"

	"github.com/kiosk404/roundtable/internal/chamber/config"
	"github.com/kiosk404/roundtable/internal/chamber/options"
	"github.com/kiosk404/roundtable/pkg/app"
	"github.com/kiosk404/roundtable/pkg/logger"
)

// NewApp builds the chamber server application: the meeting orchestration
// API for multi-agent AI discussions.
func NewApp(basename string) *app.App {
	opts := options.NewOptions()
	return app.NewApp("chamber",
		basename,
		app.WithOptions(opts),
		app.WithDescription(heredoc.Doc(`
			The chamber hosts round-table meetings between AI agents.

			It manages the agent registry, runs meetings through their
			lifecycle, drives agent turns against the configured model
			providers, and derives minutes and mind maps from the
			discussion.`)),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.Options) app.RunFunc {
	return func(basename string) error {
		if err := logger.InitLog(opts.Log.File); err != nil {
			return err
		}
		defer logger.FlushLog()
		logger.SetLevel(opts.Log.Level)

		cfg, err := config.CreateConfigFromOptions(opts)
		if err != nil {
			return err
		}

		return Run(cfg)
	}
}
