package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "mahfaza",
		Usage: "Personal document wallet web app",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
