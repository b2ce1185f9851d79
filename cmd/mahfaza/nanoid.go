package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"mahfaza/internal/storage"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Generate storage name tokens",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of tokens to generate",
			Value:   1,
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		for range count {
			fmt.Println(storage.NewToken())
		}
		return nil
	},
}
