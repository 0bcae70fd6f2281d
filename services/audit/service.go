package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/photoproos/platform/models"
	"github.com/photoproos/platform/repositories"
	"go.uber.org/zap"
)

// Entry describes a mutating action to be recorded
type Entry struct {
	OrgID        uuid.UUID
	UserID       uuid.UUID
	Action       models.AuditAction
	ResourceType string
	ResourceID   uuid.UUID
	Details      interface{}
}

// Recorder records audit entries without blocking the caller
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

var (
	errNotRunning = errors.New("audit service not running")
	errQueueFull  = errors.New("audit queue full")
)

// Config sizes the write-behind queue
type Config struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

// DefaultConfig returns the production sizing
func DefaultConfig() Config {
	return Config{
		QueueSize:    10000,
		Workers:      4,
		WriteTimeout: 5 * time.Second,
	}
}

// AuditService persists audit logs from a bounded queue drained by a fixed
// worker pool. Enqueue never blocks; a full queue drops the log.
type AuditService struct {
	repo   repositories.AuditRepository
	logger *zap.Logger
	cfg    Config

	mu      sync.RWMutex
	queue   chan *models.AuditLog
	running bool
	wg      sync.WaitGroup

	written atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewAuditService creates a stopped AuditService
func NewAuditService(repo repositories.AuditRepository, logger *zap.Logger, cfg Config) *AuditService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &AuditService{repo: repo, logger: logger, cfg: cfg}
}

// Start launches the workers
func (s *AuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("audit service already running")
	}

	s.queue = make(chan *models.AuditLog, s.cfg.QueueSize)
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.drain(s.queue)
	}
	s.running = true

	s.logger.Info("audit service started",
		zap.Int("workers", s.cfg.Workers),
		zap.Int("queue_size", s.cfg.QueueSize))
	return nil
}

// Stop closes the queue and waits up to timeout for queued logs to be written
func (s *AuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return errNotRunning
	}
	s.running = false
	pending := len(s.queue)
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped",
			zap.Int("drained", pending),
			zap.Int64("written", s.written.Load()),
			zap.Int64("dropped", s.dropped.Load()))
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v with %d logs queued", timeout, pending)
	}
}

// Enqueue hands log to the workers
func (s *AuditService) Enqueue(log *models.AuditLog) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errNotRunning
	}

	select {
	case s.queue <- log:
		return nil
	default:
		s.dropped.Add(1)
		return errQueueFull
	}
}

func (s *AuditService) drain(queue <-chan *models.AuditLog) {
	defer s.wg.Done()

	for log := range queue {
		s.write(log)
	}
}

func (s *AuditService) write(log *models.AuditLog) {
	// detached from any request so writes survive the request finishing
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	if err := s.repo.Insert(ctx, log); err != nil {
		s.failed.Add(1)
		s.logger.Error("failed to write audit log",
			zap.Error(err),
			zap.String("action", string(log.Action)),
			zap.String("org_id", log.OrgID.String()))
		return
	}
	s.written.Add(1)
}

// Stats is a point-in-time view of the queue
type Stats struct {
	Running bool  `json:"running"`
	Workers int   `json:"workers"`
	Queued  int   `json:"queued"`
	Written int64 `json:"written"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

// Stats reports queue depth and write counters
func (s *AuditService) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		Running: s.running,
		Workers: s.cfg.Workers,
		Queued:  len(s.queue),
		Written: s.written.Load(),
		Failed:  s.failed.Load(),
		Dropped: s.dropped.Load(),
	}
}

// Record builds an audit log from entry plus the request metadata carried by ctx
// and enqueues it. Failures are logged and never returned.
func (s *AuditService) Record(ctx context.Context, entry Entry) {
	log := models.NewAuditLog(entry.OrgID, entry.Action, entry.ResourceType).WithUser(entry.UserID)
	if entry.ResourceID != uuid.Nil {
		log.WithResource(entry.ResourceID)
	}
	if entry.Details != nil {
		log.WithDetails(entry.Details)
	}
	if meta, ok := RequestMetaFrom(ctx); ok {
		log.WithRequest(meta.RequestID, meta.IPAddress, meta.UserAgent)
	}

	if err := s.Enqueue(log); err != nil {
		s.logger.Warn("audit entry dropped",
			zap.Error(err),
			zap.String("action", string(entry.Action)),
			zap.String("org_id", entry.OrgID.String()))
	}
}

// Query selects audit logs for the admin listing
type Query struct {
	OrgID  uuid.UUID
	Filter models.AuditFilter
}

// List returns audit logs of an organization, filtered by action or date range
func (s *AuditService) List(ctx context.Context, q Query) ([]*models.AuditLog, error) {
	limit := q.Filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := q.Filter.Offset
	if offset < 0 {
		offset = 0
	}

	switch {
	case q.Filter.Action != "":
		return s.repo.GetByAction(ctx, q.OrgID, q.Filter.Action, limit, offset)
	case q.Filter.From != nil || q.Filter.To != nil:
		from := time.Time{}
		if q.Filter.From != nil {
			from = *q.Filter.From
		}
		to := time.Now().UTC()
		if q.Filter.To != nil {
			to = *q.Filter.To
		}
		return s.repo.GetByDateRange(ctx, q.OrgID, from, to, limit, offset)
	default:
		return s.repo.GetByOrgID(ctx, q.OrgID, limit, offset)
	}
}

// Nop discards every entry
type Nop struct{}

// Record implements Recorder
func (Nop) Record(context.Context, Entry) {}
