package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kegliz/leqo-compile/internal/app"
	"github.com/kegliz/leqo-compile/internal/config"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional, LEQO_ env vars always apply)")
	flag.Parse()

	c, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leqo-compile: %v\n", err)
		os.Exit(1)
	}

	srv, err := app.NewServer(app.ServerOptions{C: c, Version: version})
	if err != nil {
		fmt.Fprintf(os.Stderr, "leqo-compile: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(c.Port, false)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "leqo-compile: server stopped: %v\n", err)
			os.Exit(1)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "leqo-compile: shutdown: %v\n", err)
			os.Exit(1)
		}
	}
}
