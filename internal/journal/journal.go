package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Record is one journal entry describing a filter lifecycle event.
type Record struct {
	ID       string    `json:"id"`
	At       time.Time `json:"at"`
	Kind     string    `json:"kind"`
	FilterID int       `json:"filter_id,omitempty"`
	URL      string    `json:"url,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// Journal writes filter lifecycle records as JSON lines into
// date-partitioned, size-rotated files. Writes are asynchronous and
// best-effort: a full buffer drops the record rather than blocking the
// caller.
type Journal struct {
	baseDir     string
	maxSizeMB   int
	writeCh     chan Record
	done        chan struct{}
	wg          sync.WaitGroup
	currentDate string
	logger      *lumberjack.Logger
	mu          sync.Mutex
}

func New(baseDir string, bufferSize, maxSizeMB int) *Journal {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	j := &Journal{
		baseDir:   baseDir,
		maxSizeMB: maxSizeMB,
		writeCh:   make(chan Record, bufferSize),
		done:      make(chan struct{}),
	}

	j.wg.Add(1)
	go j.writeLoop()
	return j
}

// Record queues a journal entry. Never blocks.
func (j *Journal) Record(kind string, filterID int, url, detail string) {
	rec := Record{
		ID:       uuid.NewString(),
		At:       time.Now().UTC(),
		Kind:     kind,
		FilterID: filterID,
		URL:      url,
		Detail:   detail,
	}
	select {
	case j.writeCh <- rec:
	case <-j.done:
	default:
		slog.Warn("journal buffer full, dropping record", "kind", kind)
	}
}

// Close shuts down the journal and flushes pending records.
func (j *Journal) Close() error {
	close(j.done)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case rec := <-j.writeCh:
			j.writeRecord(rec)
		case <-timeout:
			slog.Warn("journal close timeout, some records may be lost")
			goto done
		default:
			goto done
		}
	}

done:
	j.wg.Wait()

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.logger != nil {
		return j.logger.Close()
	}
	return nil
}

func (j *Journal) writeLoop() {
	defer j.wg.Done()

	for {
		select {
		case rec := <-j.writeCh:
			j.writeRecord(rec)
		case <-j.done:
			return
		}
	}
}

func (j *Journal) writeRecord(rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		slog.Error("failed to marshal journal record", "error", err, "kind", rec.Kind)
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	currentDate := time.Now().UTC().Format("2006-01-02")
	if currentDate != j.currentDate || j.logger == nil {
		j.rotateForDate(currentDate)
	}
	if j.logger == nil {
		return
	}

	if _, err := j.logger.Write(append(data, '\n')); err != nil {
		slog.Error("failed to write journal record", "error", err, "kind", rec.Kind)
	}
}

func (j *Journal) rotateForDate(date string) {
	if j.logger != nil {
		_ = j.logger.Close()
		j.logger = nil
	}

	dir := filepath.Join(j.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("failed to create journal directory", "error", err, "dir", dir)
		return
	}

	j.logger = &lumberjack.Logger{
		Filename:   filepath.Join(dir, fmt.Sprintf("%d.jsonl", time.Now().Unix())),
		MaxSize:    j.maxSizeMB,
		MaxBackups: 100,
		MaxAge:     30,
		Compress:   false,
		LocalTime:  false,
	}
	j.currentDate = date
	slog.Info("opened new journal file", "dir", dir)
}
