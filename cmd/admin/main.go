package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/dealership/internal/admin/cli"
	"github.com/dmitrijs2005/dealership/internal/server/config"
)

func main() {

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: admin <command> [flags]; try 'admin help'")
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	ctx := context.Background()

	cfg, err := config.LoadConfig(args, os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := cli.NewApp(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, command, args)
	if cerr := app.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}

}
