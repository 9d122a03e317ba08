package archive

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/logging"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// GCS uploads experiment logs to a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
}

var _ interfaces.Archiver = &GCS{}

type Option func(*gcsConfig)

type gcsConfig struct {
	prefix          string
	credentialsFile string
	now             func() time.Time
}

// WithPrefix sets the object name prefix, e.g. "experiments"
func WithPrefix(prefix string) Option {
	return func(c *gcsConfig) {
		c.prefix = prefix
	}
}

// WithCredentialsFile uses a service account key instead of ADC
func WithCredentialsFile(path string) Option {
	return func(c *gcsConfig) {
		c.credentialsFile = path
	}
}

// WithClock replaces time.Now for object naming
func WithClock(now func() time.Time) Option {
	return func(c *gcsConfig) {
		c.now = now
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	cfg := &gcsConfig{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	var clientOpts []option.ClientOption
	if cfg.credentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.credentialsFile))
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &GCS{
		client: client,
		bucket: bucket,
		prefix: cfg.prefix,
		now:    cfg.now,
	}, nil
}

// ObjectName returns the object a local file is archived under:
// <prefix>/<UTC timestamp>_<base name>
func ObjectName(prefix, localPath string, at time.Time) string {
	name := at.UTC().Format("20060102T150405Z") + "_" + filepath.Base(localPath)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Archive uploads localPath and returns the gs:// URL of the object
func (g *GCS) Archive(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", goerr.Wrap(err, "failed to open file to archive", goerr.V("path", localPath))
	}
	defer safe.Close(ctx, f)

	// cancelling the writer context aborts a partial upload
	uploadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectName := ObjectName(g.prefix, localPath, g.now())
	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(uploadCtx)
	w.ContentType = "application/json"

	if _, err := io.Copy(w, f); err != nil {
		cancel()
		return "", goerr.Wrap(err, "failed to upload file",
			goerr.V("path", localPath),
			goerr.V("bucket", g.bucket),
			goerr.V("object", objectName),
		)
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize upload",
			goerr.V("bucket", g.bucket),
			goerr.V("object", objectName),
		)
	}

	url := "gs://" + g.bucket + "/" + objectName
	logging.From(ctx).Info("Archived experiment log", "path", localPath, "url", url)
	return url, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
