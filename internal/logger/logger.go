package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Types int

const (
	Info Types = iota
	Error
	Warn
	Fatal
)

type Message struct {
	Timestamp time.Time
	Tag       string
	Message   string
	LogTypes  Types
}

// manager is shared by every tagged Logger. Dev mode and the console can be
// switched at runtime by the /debug command.
type manager struct {
	mu      sync.RWMutex
	view    io.Writer
	dev     bool
	logFile *os.File
	logChan chan Message
	done    chan struct{}
	closing bool
}

type Logger struct {
	tag string
	m   *manager
}

var (
	logManager *manager
	once       sync.Once
)

// InitLogger configures the process-wide log sink. When logPath is set a
// timestamped log file is created inside it. Only the first call has effect.
func InitLogger(dev bool, logPath string, view io.Writer) error {
	var initErr error
	once.Do(func() {
		logManager, initErr = newManager(dev, logPath, view)
	})
	return initErr
}

func newManager(dev bool, logPath string, view io.Writer) (*manager, error) {
	m := &manager{
		view:    view,
		dev:     dev,
		logChan: make(chan Message, 100),
		done:    make(chan struct{}),
	}
	if logPath != "" {
		timestamp := time.Now().Format("20060102_150405")
		fileName := fmt.Sprintf("aitool_log_%s.log", timestamp)
		filePath := filepath.Join(logPath, fileName)

		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		m.logFile = file
	}

	go m.processLogs()
	return m, nil
}

// NewLogger returns a logger that prefixes every entry with tag. Before
// InitLogger has run it discards everything.
func NewLogger(tag string) *Logger {
	return &Logger{tag: tag, m: logManager}
}

// SetDev toggles mirroring of log lines to the debug console.
func SetDev(dev bool) {
	if logManager == nil {
		return
	}
	logManager.mu.Lock()
	logManager.dev = dev
	logManager.mu.Unlock()
}

func (m *manager) processLogs() {
	defer close(m.done)
	for msg := range m.logChan {
		timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")
		logMessage := fmt.Sprintf("%s [%s] %s: %s\n", timestamp, msg.Tag, msg.LogTypes.toString(), msg.Message)
		if m.logFile != nil {
			m.logFile.WriteString(logMessage)
		}
	}
}

func (l *Logger) log(logTypes Types, message string) {
	m := l.m
	if m == nil {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dev {
		if m.view != nil {
			var format string
			switch logTypes {
			case Info:
				format = "[green]DEBUG (%s): %s[-]\n"
			case Error, Fatal:
				format = "[red]DEBUG (%s): %s[-]\n"
			case Warn:
				format = "[yellow]DEBUG (%s): %s[-]\n"
			}
			fmt.Fprintf(m.view, format, l.tag, message)
		} else {
			log.Printf("[%s] %s: %s", l.tag, logTypes.toString(), message)
		}
	}

	if m.logFile != nil && !m.closing {
		m.logChan <- Message{
			Timestamp: time.Now(),
			Tag:       l.tag,
			Message:   message,
			LogTypes:  logTypes,
		}
	}
}

func (l *Logger) Info(v ...interface{}) {
	l.log(Info, fmt.Sprint(v...))
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.log(Info, fmt.Sprintf(format, v...))
}

func (l *Logger) Error(v ...interface{}) {
	l.log(Error, fmt.Sprint(v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.log(Error, fmt.Sprintf(format, v...))
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(Warn, fmt.Sprint(v...))
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.log(Warn, fmt.Sprintf(format, v...))
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(Fatal, fmt.Sprint(v...))
	l.Close()
	os.Exit(1)
}

// Close flushes pending entries to the log file and closes it. Safe to call
// more than once.
func (l *Logger) Close() {
	m := l.m
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return
	}
	m.closing = true
	close(m.logChan)
	m.mu.Unlock()

	<-m.done
	if m.logFile != nil {
		m.logFile.Close()
	}
}

func (t Types) toString() string {
	switch t {
	case Info:
		return "INFO"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
