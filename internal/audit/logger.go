package audit

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"admin-backend/internal/store"
)

// Entry is one audit record. Mutating requests against the API produce one
// entry each; reads are not recorded.
type Entry struct {
	UserID   int64          `json:"userId"`
	Action   string         `json:"action"`
	Path     string         `json:"path"`
	Status   int            `json:"status"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Logger collects audit entries in memory and periodically flushes them to
// the audit_logs table in a batch insert, so request latency never includes
// an audit write.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
	store   *store.Store
	maxSize int
	ticker  *time.Ticker
	done    chan struct{}
}

// NewLogger creates a logger that flushes on a timer or when full.
func NewLogger(s *store.Store, maxSize int, flushInterval time.Duration) *Logger {
	l := &Logger{
		store:   s,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	l.ticker = time.NewTicker(flushInterval)
	go l.run()
	return l
}

func (l *Logger) run() {
	for {
		select {
		case <-l.done:
			return
		case <-l.ticker.C:
			l.Flush()
		}
	}
}

// Record adds an entry to the buffer. If the buffer is full, a flush is
// triggered asynchronously.
func (l *Logger) Record(entry Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	shouldFlush := len(l.entries) >= l.maxSize
	l.mu.Unlock()
	if shouldFlush {
		go l.Flush()
	}
}

// Flush writes all buffered entries to the database in a single batch insert.
func (l *Logger) Flush() {
	l.mu.Lock()
	if len(l.entries) == 0 {
		l.mu.Unlock()
		return
	}
	batch := l.entries
	l.entries = nil
	l.mu.Unlock()

	var placeholders []string
	var args []any
	for _, e := range batch {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?)")

		var metaJSON any
		if e.Metadata != nil {
			b, _ := json.Marshal(e.Metadata)
			metaJSON = string(b)
		}
		args = append(args, e.UserID, e.Action, e.Path, e.Status, metaJSON)
	}

	sqlStr := "INSERT INTO audit_logs (user_id, action, path, status, metadata) VALUES " +
		strings.Join(placeholders, ", ")
	if _, err := store.Exec(context.Background(), l.store.DB, l.store.Dialect.Rebind(sqlStr), args...); err != nil {
		log.Printf("ERROR: audit flush: %v", err)
	}
}

// Stop halts the background ticker and flushes remaining entries.
func (l *Logger) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	close(l.done)
	l.Flush()
}

// Cleanup deletes entries older than the retention window.
func (l *Logger) Cleanup(ctx context.Context, retention time.Duration) {
	cutoff := time.Now().UTC().Add(-retention).Format("2006-01-02 15:04:05")
	n, err := store.Exec(ctx, l.store.DB,
		l.store.Dialect.Rebind(`DELETE FROM audit_logs WHERE created_at < ?`), cutoff)
	if err != nil {
		log.Printf("ERROR: audit cleanup: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Audit cleanup: deleted %d old entries", n)
	}
}
