// blackjack keeps a WebSocket connection to the arcade blackjack channel open,
// reconnecting one second after every disconnect.
// Usage: blackjack [--config configs/blackjack.yaml] [--url wss://...]
//
// A .env file in the working directory is loaded first, so ${VAR}
// references in the config file can be set there.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "blackjack: %v\n", err)
		os.Exit(1)
	}
}
