package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/factreply/internal/responder"
)

// SearchCommand returns the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run a web search and print the results used to ground replies",
		ArgsUsage: "QUERY",
		Action:    runSearch,
	}
}

func runSearch(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("missing required argument: QUERY")
	}

	cfg, logCloser, err := loadConfig(c, false)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	searcher, err := newSearcher(cfg)
	if err != nil {
		return err
	}

	results, err := searcher.Search(log.Logger.WithContext(c.Context), strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}

	fmt.Println(responder.TopResults(results, cfg.Search.TopResults))
	return nil
}
