// Command tiny-server runs the HTTP/1.1 server on 127.0.0.1:4221.
//
//	tiny-server --directory /tmp/files/
package main

import (
	"os"

	"github.com/searchktools/tiny-server/app"
	"github.com/searchktools/tiny-server/config"
)

func main() {
	cfg := config.New()
	a := app.New(cfg)

	if err := a.Run(); err != nil {
		log := a.Logger()
		log.Error().Err(err).Msg("server startup failed")
		os.Exit(1)
	}
}
