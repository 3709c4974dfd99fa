package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AlexVocao/login/internal/model"
	"github.com/AlexVocao/login/internal/repository"
)

const (
	auditBatchSize     = 10
	auditFlushInterval = time.Second
	auditWriteTimeout  = 5 * time.Second
)

// Auditor writes auth events asynchronously in batches.
type Auditor struct {
	repo   repository.AuthEventRepository
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	events chan model.AuthEvent
	done   chan struct{}
}

var _ AuditRecorder = (*Auditor)(nil)

// NewAuditor creates an auditor with a buffer of bufferSize pending events.
// Call Start to begin writing and Close to flush on shutdown.
func NewAuditor(repo repository.AuthEventRepository, logger *slog.Logger, bufferSize int) *Auditor {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &Auditor{
		repo:   repo,
		logger: logger,
		events: make(chan model.AuthEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Start launches the batch writer.
func (a *Auditor) Start() {
	go a.worker()
}

// Record queues event. When the buffer is full the event is written
// synchronously instead. Events recorded after Close are dropped.
func (a *Auditor) Record(ctx context.Context, event model.AuthEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}

	select {
	case a.events <- event:
	default:
		if err := a.repo.Create(context.WithoutCancel(ctx), &event); err != nil {
			a.logger.WarnContext(ctx, "write auth event", "error", err)
		}
	}
}

// Close stops accepting events and waits for pending ones to be written.
func (a *Auditor) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.events)
	a.mu.Unlock()

	<-a.done
}

func (a *Auditor) worker() {
	defer close(a.done)

	batch := make([]model.AuthEvent, 0, auditBatchSize)
	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		defer cancel()
		if err := a.repo.CreateBatch(ctx, batch); err != nil {
			a.logger.Warn("write auth events", "count", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-a.events:
			if !ok {
				// Channel closed, flush remaining events
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= auditBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
