package usecases

import (
	"sync"
	"time"

	"agent-hub/repositories"

	"github.com/rs/zerolog"
)

type published struct {
	event   string
	payload any
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *recordingNotifier) Publish(event string, payload any) {
	n.mu.Lock()
	n.events = append(n.events, published{event, payload})
	n.mu.Unlock()
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.event)
	}
	return out
}

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newDispatch() (*DispatchUseCase, repositories.CommandQueueRepository, repositories.ResultRepository, *recordingNotifier) {
	q := repositories.NewCommandQueueMemRepository()
	r := repositories.NewResultMemRepository(func() time.Time { return fixedNow })
	n := &recordingNotifier{}
	uc := NewDispatchUseCase(q, r, n, zerolog.Nop())
	uc.now = func() time.Time { return fixedNow }
	return uc, q, r, n
}
