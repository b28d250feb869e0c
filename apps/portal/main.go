package main

import (
	"log"
	"os"

	"github.com/shulehub/shule/client"
	logsvc "github.com/shulehub/shule/services/logger"
)

const appName = "shule"

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "PORTAL : ", log.LstdFlags)
	logger := logsvc.NewStdLogger(std)

	storage, err := client.NewFileStorage(appName)
	if err != nil {
		std.Fatalf("error: %s", err)
	}
	session := client.NewSessionStore(storage, logger)
	session.Hydrate()

	base := os.Getenv("SHULE_API")
	api, err := client.New(base, session)
	if err != nil {
		std.Fatalf("error: %s", err)
	}

	cli := commandLine{
		api:     api,
		session: session,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
