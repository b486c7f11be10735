package metrics

import (
	"os"
	"time"

	"rtsp-bridge/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current registry-wide totals
type Stats struct {
	ActiveSessions  int
	AttachedClients int
}

// Collector periodically collects and updates gauge metrics
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector. dbPath may be empty when
// no database is configured; the size gauges are skipped in that case.
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	c.collectDBSize()

	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	SessionsActive.Set(float64(stats.ActiveSessions))
	ClientsAttached.Set(float64(stats.AttachedClients))

	logging.Debug("Metrics collected: sessions=%d, clients=%d",
		stats.ActiveSessions, stats.AttachedClients)
}

func (c *Collector) collectDBSize() {
	if c.dbPath == "" {
		return
	}

	files := map[string]string{
		"main": c.dbPath,
		"wal":  c.dbPath + "-wal",
		"shm":  c.dbPath + "-shm",
	}

	for label, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			// WAL and SHM files come and go with checkpointing
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}
