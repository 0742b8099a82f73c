package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/authkeeper/internal/client/cli"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
)

func main() {

	cfg, args, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Printf("config: %v", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app, err := cli.NewApp(cfg)
	if err != nil {
		stop()
		log.Fatalf("%v", err)
	}

	code := 0
	if err := app.Run(ctx, args); err != nil {
		log.Printf("%v", err)
		code = 1
		if errors.Is(err, cli.ErrUnknownCommand) {
			code = 2
		}
	}

	_ = app.Close()
	stop()
	os.Exit(code)
}
