package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// MentionsCommand returns the mentions command
func MentionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "mentions",
		Usage: "List mentions inside the lookback window without replying",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "since",
				Usage: "Override the lookback window",
			},
		},
		Action: runMentions,
	}
}

func runMentions(c *cli.Context) error {
	cfg, logCloser, err := loadConfig(c, false)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	client, err := newTwitterClient(cfg)
	if err != nil {
		return err
	}

	ctx := log.Logger.WithContext(c.Context)
	selfID, err := client.SelfID(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve account id: %w", err)
	}

	lookback := cfg.Bot.Lookback
	if d := c.Duration("since"); d > 0 {
		lookback = d
	}
	mentions, err := client.Mentions(ctx, selfID, time.Now().UTC().Add(-lookback))
	if err != nil {
		return fmt.Errorf("failed to fetch mentions: %w", err)
	}

	fmt.Printf("%d mention(s) in the last %s\n", len(mentions), lookback)
	for _, m := range mentions {
		fmt.Printf("%s\tconversation=%s\t%s\t%s\n", m.ID, m.ConversationID, m.CreatedAtRaw, strings.ReplaceAll(m.Text, "\n", " "))
	}
	return nil
}
