package cli

import (
	"context"
	"fmt"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/cli/config"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdModels() *cli.Command {
	var geminiCfg config.Gemini

	return &cli.Command{
		Name:  "models",
		Usage: "List Gemini models available to the API key",
		Flags: geminiCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := geminiCfg.Client()
			if err != nil {
				return err
			}

			names, err := client.ListModels(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list Gemini models")
			}

			w := output(c)
			for _, name := range names {
				if _, err := fmt.Fprintln(w, name); err != nil {
					return goerr.Wrap(err, "failed to write model list")
				}
			}
			return nil
		},
	}
}
