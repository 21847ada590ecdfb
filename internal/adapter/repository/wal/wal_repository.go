package wal

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/V4T54L/causeway/internal/domain"
)

const (
	segmentPrefix = "segment-"
	segmentSuffix = ".wal"
	filePerm      = 0644
	// executions carry whole logs, so a line can be far larger than
	// bufio's default token size
	maxRecordSize = 64 << 20
)

// ErrFull is returned when a write would grow the WAL past its size limit.
var ErrFull = errors.New("wal is full")

// WALRepository keeps executions in append-only segment files, one JSON
// record per line, until they can be saved to the database.
type WALRepository struct {
	dir            string
	maxSegmentSize int64
	maxTotalSize   int64
	logger         *slog.Logger

	mu       sync.Mutex
	current  *os.File
	size     int64
	replayed []string
}

// NewWALRepository opens the WAL in dir, creating the directory if needed,
// and resumes appending to the newest segment.
func NewWALRepository(dir string, maxSegmentSize, maxTotalSize int64, logger *slog.Logger) (*WALRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create wal directory %s: %w", dir, err)
	}

	w := &WALRepository{
		dir:            dir,
		maxSegmentSize: maxSegmentSize,
		maxTotalSize:   maxTotalSize,
		logger:         logger.With("component", "wal"),
	}
	if err := w.resume(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *WALRepository) Write(ctx context.Context, exec domain.Execution) error {
	record, err := json.Marshal(exec)
	if err != nil {
		return fmt.Errorf("marshal execution %s: %w", exec.ID, err)
	}
	record = append(record, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	total, err := w.totalSize()
	if err != nil {
		return fmt.Errorf("measure wal: %w", err)
	}
	if total+int64(len(record)) > w.maxTotalSize {
		return fmt.Errorf("write execution %s (%d bytes on disk): %w", exec.ID, total, ErrFull)
	}

	if w.current == nil {
		if err := w.rotate(); err != nil {
			return err
		}
	}
	n, err := w.current.Write(record)
	if err != nil {
		return fmt.Errorf("append to wal segment: %w", err)
	}
	w.size += int64(n)

	if w.size >= w.maxSegmentSize {
		if err := w.rotate(); err != nil {
			w.logger.Error("failed to rotate wal segment", "error", err)
		}
	}
	return nil
}

// Replay hands every stored execution to handler, oldest first. Records that
// cannot be decoded are skipped. The first handler error stops the replay.
func (w *WALRepository) Replay(ctx context.Context, handler func(exec domain.Execution) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closeCurrent()
	segments, err := w.segments()
	if err != nil {
		return err
	}
	w.replayed = segments
	if len(segments) == 0 {
		return nil
	}

	w.logger.Info("replaying wal", "segments", len(segments))
	for _, path := range segments {
		if err := w.replaySegment(ctx, path, handler); err != nil {
			return err
		}
	}
	return nil
}

func (w *WALRepository) replaySegment(ctx context.Context, path string, handler func(exec domain.Execution) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open wal segment %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var exec domain.Execution
		if err := json.Unmarshal(scanner.Bytes(), &exec); err != nil {
			w.logger.Warn("skipping unreadable wal record", "segment", path, "error", err)
			continue
		}
		if err := handler(exec); err != nil {
			return fmt.Errorf("replay execution %s: %w", exec.ID, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan wal segment %s: %w", path, err)
	}
	return nil
}

// Truncate deletes the segments read by the last Replay. Executions written
// since then are in newer segments and survive.
func (w *WALRepository) Truncate(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, path := range w.replayed {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.logger.Error("failed to remove wal segment", "path", path, "error", err)
		}
	}
	w.logger.Info("wal truncated", "segments", len(w.replayed))
	w.replayed = nil

	if w.current == nil {
		return w.rotate()
	}
	return nil
}

// Size reports the bytes currently held on disk.
func (w *WALRepository) Size() (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalSize()
}

func (w *WALRepository) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}

func (w *WALRepository) closeCurrent() {
	if w.current == nil {
		return
	}
	if err := w.current.Sync(); err != nil {
		w.logger.Error("failed to sync wal segment", "error", err)
	}
	if err := w.current.Close(); err != nil {
		w.logger.Error("failed to close wal segment", "error", err)
	}
	w.current = nil
}

func (w *WALRepository) rotate() error {
	w.closeCurrent()
	path := filepath.Join(w.dir, fmt.Sprintf("%s%020d%s", segmentPrefix, time.Now().UnixNano(), segmentSuffix))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("create wal segment %s: %w", path, err)
	}
	w.current = f
	w.size = 0
	w.logger.Debug("opened wal segment", "path", path)
	return nil
}

func (w *WALRepository) resume() error {
	segments, err := w.segments()
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return w.rotate()
	}

	latest := segments[len(segments)-1]
	stat, err := os.Stat(latest)
	if err != nil {
		return fmt.Errorf("stat wal segment %s: %w", latest, err)
	}
	if stat.Size() >= w.maxSegmentSize {
		return w.rotate()
	}
	f, err := os.OpenFile(latest, os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open wal segment %s: %w", latest, err)
	}
	w.current = f
	w.size = stat.Size()
	return nil
}

func (w *WALRepository) segments() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read wal directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), segmentPrefix) && strings.HasSuffix(e.Name(), segmentSuffix) {
			out = append(out, filepath.Join(w.dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (w *WALRepository) totalSize() (int64, error) {
	segments, err := w.segments()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, path := range segments {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		total += info.Size()
	}
	return total, nil
}
