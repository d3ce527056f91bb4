// Package eventlog is an append-only store of categorized activity events.
// Each event becomes one line in one or more named streams, persisted as
// <dir>/<stream>.log.
package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/khanghh/phishsoc/internal/metrics"
	"github.com/khanghh/phishsoc/params"
)

var streamNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Event is the structured form of an appended line, handed to a Mirror.
type Event struct {
	Time     time.Time
	Category Category
	Streams  []string
	Fields   map[string]string
	Line     string
}

// Mirror receives a copy of every appended event.
type Mirror interface {
	RecordEvent(ctx context.Context, event *Event) error
}

type StreamSummary struct {
	Description  string `json:"description"`
	File         string `json:"file"`
	SizeBytes    int64  `json:"size_bytes"`
	SizeReadable string `json:"size_readable"`
	Lines        int    `json:"lines"`
	Error        string `json:"error,omitempty"`
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithMirror adds a mirror. Mirrors are called in the order they were added.
func WithMirror(mirror Mirror) Option {
	return func(s *Store) {
		s.mirrors = append(s.mirrors, mirror)
	}
}

// WithAsyncWrites hands lines to one writer goroutine per stream through a
// queue of queueSize lines. Append blocks while the queue is full.
func WithAsyncWrites(queueSize int) Option {
	return func(s *Store) {
		if queueSize <= 0 {
			queueSize = params.LogQueueSize
		}
		s.queueSize = queueSize
	}
}

type Store struct {
	dir       string
	now       func() time.Time
	mirrors   []Mirror
	queueSize int

	locksMu sync.Mutex
	locks   map[string]*sync.RWMutex

	closeMu sync.RWMutex
	closed  bool
	queues  map[string]*streamQueue
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) streamLock(stream string) *sync.RWMutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[stream]
	if !ok {
		lock = &sync.RWMutex{}
		s.locks[stream] = lock
	}
	return lock
}

func (s *Store) streamPath(stream string) (string, error) {
	if !streamNamePattern.MatchString(stream) {
		return "", ErrInvalidStream
	}
	return filepath.Join(s.dir, stream+".log"), nil
}

// Append formats an event and writes it to every stream its category routes
// to. Write failures are reported to the operator log and returned, but
// callers are expected to carry on with their own operation.
func (s *Store) Append(ctx context.Context, category Category, fields Fields) error {
	if !category.Valid() {
		return ErrUnknownCategory
	}
	ts := s.now()
	rendered := renderFields(category, fields)
	line := formatLine(ts, category, rendered)
	streams := category.streams(fields)
	metrics.LogEvents.WithLabelValues(string(category)).Inc()

	var errs []error
	for _, stream := range streams {
		if err := s.dispatch(stream, line); err != nil {
			errs = append(errs, err)
		}
	}

	if len(s.mirrors) > 0 {
		event := &Event{
			Time:     ts,
			Category: category,
			Streams:  streams,
			Fields:   rendered,
			Line:     string(line[:len(line)-1]),
		}
		for _, mirror := range s.mirrors {
			if err := mirror.RecordEvent(ctx, event); err != nil {
				slog.Error("Failed to mirror log event", "category", category, "error", err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Store) dispatch(stream string, line []byte) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if q, ok := s.queues[stream]; ok && !s.closed {
		q.lines <- line
		return nil
	}
	return s.writeLine(stream, line)
}

// writeLine appends line with a single write while holding the stream lock.
func (s *Store) writeLine(stream string, line []byte) error {
	path, err := s.streamPath(stream)
	if err != nil {
		return err
	}
	lock := s.streamLock(stream)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return s.reportFailure(stream, "open", err)
	}
	_, err = f.Write(line)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return s.reportFailure(stream, "write", err)
	}
	return nil
}

func (s *Store) reportFailure(stream, op string, err error) error {
	slog.Error("Failed to write log", "stream", stream, "op", op, "error", err)
	metrics.LogWriteFailures.WithLabelValues(stream).Inc()
	return &StorageError{Stream: stream, Op: op, Err: err}
}

// Read returns up to the last maxLines lines of stream, oldest first. A
// stream that has never been written reads as empty.
func (s *Store) Read(stream string, maxLines int) ([]string, error) {
	path, err := s.streamPath(stream)
	if err != nil {
		return nil, err
	}
	if maxLines <= 0 {
		return []string{}, nil
	}
	lock := s.streamLock(stream)
	lock.RLock()
	defer lock.RUnlock()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, &StorageError{Stream: stream, Op: "read", Err: err}
	}
	defer f.Close()

	lines := []string{}
	reader := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := readLine(reader, params.LogReadMaxLineLength)
		if line != nil {
			lines = append(lines, string(line))
			if len(lines) > maxLines {
				lines = lines[1:]
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &StorageError{Stream: stream, Op: "read", Err: err}
		}
	}
	return lines, nil
}

// readLine returns the next line without its terminator, keeping at most
// limit bytes of it. The rest of an over-long line is consumed and dropped.
// At the end of input it returns a nil line together with io.EOF.
func readLine(r *bufio.Reader, limit int) ([]byte, error) {
	var line []byte
	read := false
	for {
		chunk, err := r.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
			if room := limit - len(line); room > 0 {
				line = append(line, chunk[:min(room, len(chunk))]...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if !read {
			return nil, err
		}
		line = bytes.TrimSuffix(bytes.TrimSuffix(line, []byte("\n")), []byte("\r"))
		if line == nil {
			line = []byte{}
		}
		if err == io.EOF {
			err = nil
		}
		return line, err
	}
}

// ReadAll returns the raw content of stream's backing file.
func (s *Store) ReadAll(stream string) ([]byte, error) {
	path, err := s.streamPath(stream)
	if err != nil {
		return nil, err
	}
	lock := s.streamLock(stream)
	lock.RLock()
	defer lock.RUnlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrStreamNotFound
	}
	if err != nil {
		return nil, &StorageError{Stream: stream, Op: "read", Err: err}
	}
	return data, nil
}

func (s *Store) summarizeStream(stream string) StreamSummary {
	summary := StreamSummary{
		Description:  streamDescriptions[stream],
		File:         stream + ".log",
		SizeReadable: formatBytes(0),
	}
	path, _ := s.streamPath(stream)
	lock := s.streamLock(stream)
	lock.RLock()
	defer lock.RUnlock()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return summary
	}
	if err != nil {
		summary.Error = err.Error()
		return summary
	}
	defer f.Close()

	var size int64
	reader := bufio.NewReader(f)
	buf := make([]byte, 32*1024)
	for {
		n, err := reader.Read(buf)
		size += int64(n)
		for _, b := range buf[:n] {
			if b == '\n' {
				summary.Lines++
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			summary.Error = err.Error()
			return summary
		}
	}
	summary.SizeBytes = size
	summary.SizeReadable = formatBytes(size)
	return summary
}

// Summarize reports size and line count of every named stream. It is
// computed on each call.
func (s *Store) Summarize() map[string]StreamSummary {
	summaries := make(map[string]StreamSummary, len(Streams))
	for _, stream := range Streams {
		summaries[stream] = s.summarizeStream(stream)
	}
	return summaries
}

// Close drains pending asynchronous writes. Appends after Close are written
// synchronously.
func (s *Store) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	for _, q := range s.queues {
		close(q.lines)
	}
	s.closeMu.Unlock()

	for _, q := range s.queues {
		<-q.done
	}
	return nil
}

func NewStore(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = params.LogDir
	}
	s := &Store{
		dir:    dir,
		now:    time.Now,
		locks:  make(map[string]*sync.RWMutex),
		queues: make(map[string]*streamQueue),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("Failed to create logs directory", "dir", dir, "error", err)
	}
	if s.queueSize > 0 {
		for _, stream := range Streams {
			s.queues[stream] = s.startQueue(stream)
		}
	}
	return s
}
