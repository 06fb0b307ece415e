// Package main starts the deskpointer server.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
)

// main is the entrypoint for the deskpointer server.
func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}
