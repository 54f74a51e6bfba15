// Package msg is the structured message manager behind the library's
// diagnostics: leveled messages with a configurable time format, fanned
// out to pluggable sinks (console, rotating file).
package msg

import (
	"fmt"
	"sync"
	"time"
)

// Level classifies a message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// String returns the level tag used in formatted output.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Message is one diagnostic record.
type Message struct {
	Level Level
	Time  time.Time
	Text  string
}

// Sink receives published messages.
type Sink interface {
	Write(m Message, formattedTime string) error
}

// Manager fans messages out to its sinks, filtering below the
// configured minimum level. Safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	minLevel   Level
	timeFormat string
	sinks      []Sink
}

// DefaultTimeFormat is the timestamp layout used when none is set.
const DefaultTimeFormat = "2006-01-02 15:04:05.000"

// NewManager builds a manager at the given minimum level.
func NewManager(minLevel Level) *Manager {
	return &Manager{
		minLevel:   minLevel,
		timeFormat: DefaultTimeFormat,
	}
}

// SetTimeFormat sets the timestamp layout (time.Format reference
// layout).
func (mg *Manager) SetTimeFormat(layout string) {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	mg.timeFormat = layout
}

// SetLevel sets the minimum published level.
func (mg *Manager) SetLevel(l Level) {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	mg.minLevel = l
}

// AddSink registers a sink.
func (mg *Manager) AddSink(s Sink) {
	mg.mu.Lock()
	defer mg.mu.Unlock()
	mg.sinks = append(mg.sinks, s)
}

// Publish formats and dispatches a message to every sink.
func (mg *Manager) Publish(level Level, format string, args ...interface{}) {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	if level < mg.minLevel {
		return
	}
	m := Message{
		Level: level,
		Time:  time.Now(),
		Text:  fmt.Sprintf(format, args...),
	}
	formatted := m.Time.Format(mg.timeFormat)
	for _, s := range mg.sinks {
		// A failing sink must not take the others down.
		_ = s.Write(m, formatted)
	}
}

// Debug publishes at debug level.
func (mg *Manager) Debug(format string, args ...interface{}) {
	mg.Publish(LevelDebug, format, args...)
}

// Info publishes at info level.
func (mg *Manager) Info(format string, args ...interface{}) {
	mg.Publish(LevelInfo, format, args...)
}

// Warning publishes at warning level.
func (mg *Manager) Warning(format string, args ...interface{}) {
	mg.Publish(LevelWarning, format, args...)
}

// Error publishes at error level.
func (mg *Manager) Error(format string, args ...interface{}) {
	mg.Publish(LevelError, format, args...)
}

// defaultManager is the shared manager most of the library publishes
// through.
var defaultManager = NewManager(LevelInfo)

// Default returns the shared manager.
func Default() *Manager {
	return defaultManager
}
