package main

import (
	"context"
	"log"

	server "github.com/dmitrijs2005/contacthub/internal/server"
	"github.com/dmitrijs2005/contacthub/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
