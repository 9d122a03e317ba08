package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/prompt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

var errPromptQuality = goerr.New("prompt failed quality checks")

func cmdPrompt() *cli.Command {
	var dir string

	return &cli.Command{
		Name:  "prompt",
		Usage: "Manage agent prompts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "prompts-dir",
				Usage:       "Prompt library directory",
				Value:       "prompts",
				Sources:     cli.EnvVars("SWARM_PROMPTS_DIR"),
				Destination: &dir,
			},
		},
		Commands: []*cli.Command{
			cmdPromptShow(&dir),
			cmdPromptSave(&dir),
			cmdPromptList(&dir),
			cmdPromptCheck(&dir),
		},
	}
}

// loadPrompt returns a saved prompt, or the effective system prompt when
// name is an agent role without a saved override
func loadPrompt(lib *prompt.Library, name string) (string, error) {
	content, err := lib.Load(name)
	if err == nil {
		return content, nil
	}
	if role, rerr := types.ParseAgentRole(name); rerr == nil {
		return prompt.NewBuilder(prompt.WithLibrary(lib)).SystemPrompt(role)
	}
	return "", err
}

func cmdPromptShow(dir *string) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print a saved prompt or the system prompt of an agent role",
		ArgsUsage: "<name|auditor|fixer|judge>",
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return goerr.New("prompt name is required")
			}

			content, err := loadPrompt(prompt.NewLibrary(*dir), name)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(output(c), content)
			return err
		},
	}
}

func cmdPromptSave(dir *string) *cli.Command {
	var file string
	var overwrite bool

	return &cli.Command{
		Name:      "save",
		Usage:     "Store a prompt in the library; <role>_system overrides a built-in system prompt",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Read the prompt from this file instead of stdin",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "overwrite",
				Usage:       "Replace an existing prompt",
				Destination: &overwrite,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return goerr.New("prompt name is required")
			}

			var raw []byte
			var err error
			if file != "" {
				raw, err = os.ReadFile(file)
			} else {
				raw, err = io.ReadAll(input(c))
			}
			if err != nil {
				return goerr.Wrap(err, "failed to read prompt", goerr.V("file", file))
			}

			lib := prompt.NewLibrary(*dir)
			if err := lib.Save(name, string(raw), overwrite); err != nil {
				return err
			}

			_, err = fmt.Fprintf(output(c), "saved %s (sha256 %s)\n", name, prompt.Hash(string(raw)))
			return err
		},
	}
}

func cmdPromptList(dir *string) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List saved prompts",
		Action: func(ctx context.Context, c *cli.Command) error {
			names, err := prompt.NewLibrary(*dir).List()
			if err != nil {
				return err
			}
			w := output(c)
			for _, name := range names {
				if _, err := fmt.Fprintln(w, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func cmdPromptCheck(dir *string) *cli.Command {
	var maxLength int

	return &cli.Command{
		Name:      "check",
		Usage:     "Run quality checks on a prompt",
		ArgsUsage: "<name|auditor|fixer|judge>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "max-length",
				Usage:       "Maximum prompt length in characters",
				Value:       prompt.DefaultMaxLength,
				Destination: &maxLength,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			name := c.Args().First()
			if name == "" {
				return goerr.New("prompt name is required")
			}

			content, err := loadPrompt(prompt.NewLibrary(*dir), name)
			if err != nil {
				return err
			}

			q := prompt.ValidateQuality(content, maxLength)
			w := output(c)

			checks := make([]string, 0, len(q.Checks))
			for check := range q.Checks {
				checks = append(checks, check)
			}
			sort.Strings(checks)

			fmt.Fprintf(w, "%s length=%d sha256=%s\n", name, q.Length, prompt.Hash(content))
			for _, check := range checks {
				mark := "ok"
				if !q.Checks[check] {
					mark = "NG"
				}
				fmt.Fprintf(w, "  %-24s %s\n", check, mark)
			}

			if !q.Valid {
				return goerr.Wrap(errPromptQuality, "prompt is not valid", goerr.V("name", name))
			}
			return nil
		},
	}
}
