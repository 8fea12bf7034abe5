package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

type level struct {
	name  string
	paint func(a ...interface{}) string
}

var (
	levelDebug = level{"DEBUG", color.New(color.FgHiBlack).SprintFunc()}
	levelInfo  = level{"INFO", color.New(color.FgGreen).SprintFunc()}
	levelWarn  = level{"WARN", color.New(color.FgYellow).SprintFunc()}
	levelError = level{"ERROR", color.New(color.FgRed, color.Bold).SprintFunc()}
	levelFatal = level{"FATAL", color.New(color.FgHiRed, color.Bold).SprintFunc()}
)

var category = color.New(color.FgCyan).SprintFunc()

// Logger writes one line per entry: time, level, category, message.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool
	exit  func(int)
}

func NewLogger() *Logger {
	return New(os.Stdout, os.Getenv("APP_DEBUG") == "true")
}

func New(out io.Writer, debug bool) *Logger {
	return &Logger{out: out, debug: debug, exit: os.Exit}
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return New(io.Discard, false)
}

func (l *Logger) SetDebug(debug bool) {
	l.mu.Lock()
	l.debug = debug
	l.mu.Unlock()
}

func (l *Logger) Debug(cat, msg string) {
	l.mu.Lock()
	enabled := l.debug
	l.mu.Unlock()
	if enabled {
		l.write(levelDebug, cat, msg)
	}
}

func (l *Logger) Info(cat, msg string)  { l.write(levelInfo, cat, msg) }
func (l *Logger) Warn(cat, msg string)  { l.write(levelWarn, cat, msg) }
func (l *Logger) Error(cat, msg string) { l.write(levelError, cat, msg) }

func (l *Logger) Fatal(cat, msg string) {
	l.write(levelFatal, cat, msg)
	l.exit(1)
}

func (l *Logger) LogProcess(cat, msg string) {
	l.Info(cat, "▶ "+msg)
}

func (l *Logger) LogDatabase(action, db, msg string) {
	l.Info("DB:"+db, fmt.Sprintf("%s - %s", action, msg))
}

func (l *Logger) LogBroker(action, target, msg string) {
	l.Info("BROKER:"+target, fmt.Sprintf("%s - %s", action, msg))
}

func (l *Logger) LogAPI(method, path, status, duration string) {
	l.Info("API", fmt.Sprintf("%s %s - %s (%s)", method, path, status, duration))
}

func (l *Logger) LogSecurity(event, msg string) {
	l.Warn("SECURITY", fmt.Sprintf("%s - %s", event, msg))
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.out.(io.Closer); ok && l.out != os.Stdout && l.out != os.Stderr {
		_ = c.Close()
	}
}

func (l *Logger) write(lv level, cat, msg string) {
	line := fmt.Sprintf("%s [%s] [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05.000"), lv.paint(lv.name), category(cat), msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, line)
}
