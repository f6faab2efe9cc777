package chamber

import (
	"github.com/kiosk404/roundtable/internal/chamber/config"
)

// Run starts the chamber API server and blocks until shutdown.
func Run(cfg *config.Config) error {
	server, err := createAPIServer(cfg)
	if err != nil {
		return err
	}

	server.prepareRun(cfg)
	return server.run()
}
