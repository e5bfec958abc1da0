// Command factio reads and writes delimited files and database tables.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/go-data-exporter/factio/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
