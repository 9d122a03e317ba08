package memory

import (
	"context"
	"sync"

	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/interfaces"
	"github.com/SaraCher04/Refactoring-Swarm-Equipe-41/pkg/domain/model"
)

// Memory keeps log entries in process memory
type Memory struct {
	mu      sync.RWMutex
	entries []*model.LogEntry
}

var _ interfaces.LogRepository = &Memory{}

func New() *Memory {
	return &Memory{}
}

func (m *Memory) Append(ctx context.Context, entry *model.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry.Copy())
	return nil
}

func (m *Memory) List(ctx context.Context) ([]*model.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.LogEntry, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, e.Copy())
	}
	return result, nil
}

func (m *Memory) Close() error {
	return nil
}
