package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/factreply/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "factreply",
		Usage:   "Fact-checking reply bot for social media mentions",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE` (default: ./factreply.toml, ~/.factreply.toml)",
			},
		},
		DefaultCommand: "run",
		Commands: []*cli.Command{
			cmd.RunCommand(),
			cmd.OnceCommand(),
			cmd.MentionsCommand(),
			cmd.SearchCommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
