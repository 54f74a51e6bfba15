package msg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// ConsoleSink writes formatted messages to a writer, stderr by default.
type ConsoleSink struct {
	Out io.Writer
}

// NewConsoleSink builds a sink to stderr.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{Out: os.Stderr}
}

// Write renders one message line.
func (s *ConsoleSink) Write(m Message, formattedTime string) error {
	out := s.Out
	if out == nil {
		out = os.Stderr
	}
	_, err := fmt.Fprintf(out, "%s [%s] %s\n", formattedTime, m.Level, m.Text)
	return err
}

// FileSink appends messages to a log file, rotating it when it exceeds
// the size limit. Rotation renames the active file with a .1 suffix,
// replacing any previous rotation.
type FileSink struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	file     *os.File
	written  int64
}

// NewFileSink opens (or creates) the log file at path with the given
// rotation threshold in bytes. A non-positive threshold disables
// rotation.
func NewFileSink(path string, maxBytes int64) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("msg: open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("msg: stat log file: %w", err)
	}
	return &FileSink{
		path:     path,
		maxBytes: maxBytes,
		file:     f,
		written:  info.Size(),
	}, nil
}

// Write appends one message line, rotating first if the file is over
// the threshold.
func (s *FileSink) Write(m Message, formattedTime string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBytes > 0 && s.written >= s.maxBytes {
		if err := s.rotate(); err != nil {
			return err
		}
	}

	n, err := fmt.Fprintf(s.file, "%s [%s] %s\n", formattedTime, m.Level, m.Text)
	s.written += int64(n)
	return err
}

func (s *FileSink) rotate() error {
	if err := s.file.Close(); err != nil {
		return err
	}
	rotated := s.path + ".1"
	_ = os.Remove(rotated)
	if err := os.Rename(s.path, rotated); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	s.file = f
	s.written = 0
	return nil
}

// Close flushes and closes the log file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Path returns the cleaned absolute path of the active log file.
func (s *FileSink) Path() string {
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return s.path
	}
	return abs
}
