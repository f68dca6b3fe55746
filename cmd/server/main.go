package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/server"
	"github.com/dmitrijs2005/librarian/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Printf("%v", err)
		os.Exit(2)
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.SlogLevel())

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}

	app.Run(ctx)

}
