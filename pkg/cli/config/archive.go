package config

import (
	"context"
	"log/slog"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/service/archive"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Archive holds configuration for uploading the experiment log to GCS
type Archive struct {
	bucket      string
	prefix      string
	credentials string
}

// Flags returns CLI flags for archive configuration
func (a *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "GCS bucket receiving the experiment log after a run",
			Category:    "Archive",
			Sources:     cli.EnvVars("SWARM_ARCHIVE_BUCKET"),
			Destination: &a.bucket,
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix in the archive bucket",
			Value:       "experiments",
			Category:    "Archive",
			Sources:     cli.EnvVars("SWARM_ARCHIVE_PREFIX"),
			Destination: &a.prefix,
		},
		&cli.StringFlag{
			Name:        "archive-credentials",
			Usage:       "Service account key file; application default credentials when empty",
			Category:    "Archive",
			Sources:     cli.EnvVars("SWARM_ARCHIVE_CREDENTIALS"),
			Destination: &a.credentials,
		},
	}
}

// LogAttrs returns log attributes for the archive configuration
func (a *Archive) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("bucket", a.bucket),
		slog.String("prefix", a.prefix),
	}
}

// IsEnabled returns true when a bucket is configured
func (a *Archive) IsEnabled() bool {
	return a.bucket != ""
}

// Configure creates the GCS archiver. Returns nil when no bucket is set.
func (a *Archive) Configure(ctx context.Context) (*archive.GCS, error) {
	if !a.IsEnabled() {
		return nil, nil
	}

	opts := []archive.Option{archive.WithPrefix(a.prefix)}
	if a.credentials != "" {
		opts = append(opts, archive.WithCredentialsFile(a.credentials))
	}

	client, err := archive.New(ctx, a.bucket, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create archive client", goerr.V("bucket", a.bucket))
	}
	return client, nil
}
