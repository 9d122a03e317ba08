package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// DefaultCollection holds experiment log entries
const DefaultCollection = "experiment_logs"

// logEntryDoc is the Firestore document representation of model.LogEntry.
// Details are kept as JSON to survive values Firestore cannot encode.
type logEntryDoc struct {
	ID        string    `firestore:"ID"`
	Seq       int64     `firestore:"Seq"`
	Timestamp time.Time `firestore:"Timestamp"`
	Agent     string    `firestore:"Agent"`
	Model     string    `firestore:"Model"`
	Action    string    `firestore:"Action"`
	Details   string    `firestore:"Details"`
	Status    string    `firestore:"Status"`
}

func toLogEntryDoc(e *model.LogEntry, seq int64) (*logEntryDoc, error) {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode details", goerr.V("id", e.ID))
	}
	return &logEntryDoc{
		ID:        string(e.ID),
		Seq:       seq,
		Timestamp: e.Timestamp.UTC(),
		Agent:     e.Agent,
		Model:     e.Model,
		Action:    e.Action.String(),
		Details:   string(details),
		Status:    e.Status.String(),
	}, nil
}

func fromLogEntryDoc(d *logEntryDoc) (*model.LogEntry, error) {
	e := &model.LogEntry{
		ID:        model.LogEntryID(d.ID),
		Timestamp: d.Timestamp,
		Agent:     d.Agent,
		Model:     d.Model,
		Action:    types.ActionType(d.Action),
		Status:    types.Status(d.Status),
	}
	if err := json.Unmarshal([]byte(d.Details), &e.Details); err != nil {
		return nil, goerr.Wrap(err, "invalid details", goerr.V("id", d.ID))
	}
	return e, nil
}

// Firestore stores log entries in a single collection
type Firestore struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.LogRepository = &Firestore{}

type Option func(*Firestore)

// WithCollection overrides DefaultCollection
func WithCollection(name string) Option {
	return func(f *Firestore) {
		f.collection = name
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client:     client,
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Firestore) Append(ctx context.Context, entry *model.LogEntry) error {
	doc, err := toLogEntryDoc(entry, time.Now().UnixNano())
	if err != nil {
		return err
	}

	docRef := f.client.Collection(f.collection).Doc(doc.ID)
	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to append log entry", goerr.V("id", entry.ID))
	}
	return nil
}

func (f *Firestore) List(ctx context.Context) ([]*model.LogEntry, error) {
	iter := f.client.Collection(f.collection).OrderBy("Seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	entries := []*model.LogEntry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate log entries")
		}

		var d logEntryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode log entry", goerr.V("docID", doc.Ref.ID))
		}
		entry, err := fromLogEntryDoc(&d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
