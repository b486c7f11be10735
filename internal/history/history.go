package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"rtsp-bridge/internal/logging"
	"rtsp-bridge/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// queueDepth bounds the async event writer. Lifecycle events are rare
// (a handful per session), so this never fills in practice; when it
// does, events are dropped rather than stalling the relay path.
const queueDepth = 256

// Event is one row of the session lifecycle journal.
type Event struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Source    string    `json:"source,omitempty"`
	Event     string    `json:"event"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Event kinds recorded in the journal.
const (
	EventStarted  = "started"
	EventResolved = "resolved"
	EventStopped  = "stopped"
)

// Store is the append-only session event journal backed by SQLite.
// Writes are queued and applied by a background goroutine so callers
// holding session locks never wait on the database.
type Store struct {
	db     *sql.DB
	dbPath string

	queue chan Event
	done  chan struct{}
}

// Open opens (creating if necessary) the journal database at dbPath.
// The parent directory must already exist and be writable; use
// startup.LoadConfig() to validate directories before calling this.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	logging.Info("History database path: %s", dbPath)

	if err := diagnosePermissions(dbPath); err != nil {
		logging.Warn("History database permission diagnostics: %v", err)
	}

	// Use WAL mode and other optimizations
	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	// The journal sees one writer goroutine plus occasional readers
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		queue:  make(chan Event, queueDepth),
		done:   make(chan struct{}),
	}

	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	go s.writeLoop()

	logging.Info("History database initialized successfully at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS session_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		event TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id);
	CREATE INDEX IF NOT EXISTS idx_session_events_created ON session_events(created_at);
	`

	_, err = s.db.ExecContext(ctx, schema)
	return err
}

// Close drains the write queue and closes the database. Events recorded
// after Close are silently dropped.
func (s *Store) Close() error {
	close(s.queue)
	<-s.done
	return s.db.Close()
}

// writeLoop applies queued events until the queue closes.
func (s *Store) writeLoop() {
	defer close(s.done)
	for ev := range s.queue {
		s.insert(ev)
		metrics.DBConnectionsOpen.Set(float64(s.db.Stats().OpenConnections))
	}
}

func (s *Store) insert(ev Event) {
	start := time.Now()
	var err error
	defer func() { recordQuery("insert_event", start, err) }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO session_events (session_id, source, event, detail) VALUES (?, ?, ?, ?)",
		ev.SessionID, ev.Source, ev.Event, ev.Detail,
	)
	if err != nil {
		logging.Error("failed to record %s event for %s: %v", ev.Event, ev.SessionID, err)
	}
}

// record queues an event for the background writer. The queue never
// blocks; if it is full the event is dropped with a warning.
func (s *Store) record(ev Event) {
	defer func() {
		// A send on the closed queue after Close loses the event,
		// which is acceptable during shutdown.
		if r := recover(); r != nil {
			logging.Debug("history event for %s dropped after close", ev.SessionID)
		}
	}()

	select {
	case s.queue <- ev:
	default:
		logging.Warn("history queue full, dropping %s event for %s", ev.Event, ev.SessionID)
	}
}

// RecentEvents returns up to limit journal rows, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_events", start, err) }()

	if limit <= 0 {
		limit = 100
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, source, event, detail, created_at
		FROM session_events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var createdAt int64
		if err = rows.Scan(&ev.ID, &ev.SessionID, &ev.Source, &ev.Event, &ev.Detail, &createdAt); err != nil {
			return nil, err
		}
		ev.CreatedAt = time.Unix(createdAt, 0).UTC()
		events = append(events, ev)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return events, nil
}

// SessionEvents returns the journal rows for one session, oldest first.
func (s *Store) SessionEvents(ctx context.Context, sessionID string) ([]Event, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_events", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, source, event, detail, created_at
		FROM session_events
		WHERE session_id = ?
		ORDER BY id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var createdAt int64
		if err = rows.Scan(&ev.ID, &ev.SessionID, &ev.Source, &ev.Event, &ev.Detail, &createdAt); err != nil {
			return nil, err
		}
		ev.CreatedAt = time.Unix(createdAt, 0).UTC()
		events = append(events, ev)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Prune deletes journal rows older than the cutoff and reports how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("prune_events", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM session_events WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Path returns the database file path, for size metrics collection.
func (s *Store) Path() string {
	return s.dbPath
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnosePermissions checks database directory and file permissions
func diagnosePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("History database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile) // Explicitly ignore cleanup error

	if dbInfo, err := os.Stat(dbPath); err == nil {
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("History database file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	return nil
}
