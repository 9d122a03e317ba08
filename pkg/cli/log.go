package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/cli/config"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdLog() *cli.Command {
	var recorderCfg config.Recorder
	var agent string
	var status string
	var limit int

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "agent",
			Usage:       "Only show entries of this agent",
			Destination: &agent,
		},
		&cli.StringFlag{
			Name:        "status",
			Usage:       "Only show entries with this status (SUCCESS, FAILURE)",
			Destination: &status,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Show only the last N matching entries (0 shows all)",
			Destination: &limit,
		},
	}
	flags = append(flags, recorderCfg.Flags()...)

	return &cli.Command{
		Name:  "log",
		Usage: "Show recorded agent interactions of the experiment log",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := recorderCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close experiment log", "error", err.Error())
				}
			}()

			entries, err := repo.List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to read experiment log")
			}

			matched := filterEntries(entries, agent, status)
			if limit > 0 && len(matched) > limit {
				matched = matched[len(matched)-limit:]
			}

			w := output(c)
			for _, e := range matched {
				fmt.Fprintf(w, "%s  %-12s %-10s %-7s %-18s %s\n",
					e.Timestamp.Format(time.RFC3339),
					e.Agent, e.Action, e.Status, e.Model, entryFile(e))
			}

			counts := countByAgent(matched)
			agents := make([]string, 0, len(counts))
			for a := range counts {
				agents = append(agents, a)
			}
			sort.Strings(agents)

			fmt.Fprintf(w, "\n%d entries\n", len(matched))
			for _, a := range agents {
				fmt.Fprintf(w, "  %-12s %d\n", a, counts[a])
			}
			return nil
		},
	}
}

func filterEntries(entries []*model.LogEntry, agent, status string) []*model.LogEntry {
	var out []*model.LogEntry
	for _, e := range entries {
		if agent != "" && e.Agent != agent {
			continue
		}
		if status != "" && string(e.Status) != status {
			continue
		}
		out = append(out, e)
	}
	return out
}

func countByAgent(entries []*model.LogEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Agent]++
	}
	return counts
}

func entryFile(e *model.LogEntry) string {
	if f, ok := e.Details[model.DetailFile].(string); ok {
		return f
	}
	return ""
}
