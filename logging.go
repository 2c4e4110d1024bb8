package qf

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-utilpkg/jsonenc"
	"github.com/joeycumines/logiface"
)

// Level is a small severity enum kept separate from logiface.Level so
// callers of Framework/ActiveObject never need to import logiface
// directly to configure a Logger.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// LogEntry is a single structured log record emitted by the framework.
type LogEntry struct {
	Level    Level
	Category string // "pool", "queue", "timer", "pubsub", "sched"
	Msg      string
	Err      error
	Fields   map[string]any
	Time     time.Time
}

// Logger is the structured logging interface the framework logs
// through, decoupled from any concrete backend.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level Level) bool
}

type noOpLogger struct{}

func (noOpLogger) Log(LogEntry)         {}
func (noOpLogger) IsEnabled(Level) bool { return false }

// NewNoOpLogger returns a Logger that discards everything.
func NewNoOpLogger() Logger { return noOpLogger{} }

// --- logiface-backed default implementation -------------------------------

// qfEvent is the minimal logiface.Event implementation backing the
// framework's default Logger.
type qfEvent struct {
	logiface.UnimplementedEvent
	level  logiface.Level
	fields []qfField
	msg    string
	err    error
}

type qfField struct {
	key string
	val any
}

func (e *qfEvent) Level() logiface.Level           { return e.level }
func (e *qfEvent) AddField(key string, val any)    { e.fields = append(e.fields, qfField{key, val}) }
func (e *qfEvent) AddMessage(msg string) bool       { e.msg = msg; return true }
func (e *qfEvent) AddError(err error) bool          { e.err = err; return true }
func (e *qfEvent) AddString(key, val string) bool   { e.AddField(key, val); return true }
func (e *qfEvent) AddInt(key string, val int) bool  { e.AddField(key, val); return true }
func (e *qfEvent) AddBool(key string, val bool) bool { e.AddField(key, val); return true }

type qfEventFactory struct {
	pool sync.Pool
}

func newQFEventFactory() *qfEventFactory {
	f := &qfEventFactory{}
	f.pool.New = func() any { return &qfEvent{} }
	return f
}

func (f *qfEventFactory) NewEvent(level logiface.Level) *qfEvent {
	e := f.pool.Get().(*qfEvent)
	e.level = level
	e.fields = e.fields[:0]
	e.msg = ""
	e.err = nil
	return e
}

// ReleaseEvent implements logiface.EventReleaser, returning e to the pool
// once the logger is done with it after Write.
func (f *qfEventFactory) ReleaseEvent(e *qfEvent) { f.pool.Put(e) }

// jsonLineWriter serializes qfEvent values as newline-delimited JSON,
// using jsonenc's zero-allocation string/float encoders — the same
// low-level building blocks logiface's own "stumpy" backend is built on.
// Integers (signed and unsigned) and booleans are written with strconv;
// strings, floats and every other value route through jsonenc.
type jsonLineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONLineWriter returns a logiface.Writer[*qfEvent] that writes one
// JSON object per line to out.
func NewJSONLineWriter(out io.Writer) logiface.Writer[*qfEvent] {
	return &jsonLineWriter{out: out}
}

func (w *jsonLineWriter) Write(e *qfEvent) error {
	buf := make([]byte, 0, 128)
	buf = append(buf, '{')
	buf = append(buf, `"level":`...)
	buf = jsonenc.AppendString(buf, levelName(e.level))
	if e.msg != "" {
		buf = append(buf, `,"msg":`...)
		buf = jsonenc.AppendString(buf, e.msg)
	}
	if e.err != nil {
		buf = append(buf, `,"err":`...)
		buf = jsonenc.AppendString(buf, e.err.Error())
	}
	for _, f := range e.fields {
		buf = append(buf, ',')
		buf = jsonenc.AppendString(buf, f.key)
		buf = append(buf, ':')
		buf = appendJSONValue(buf, f.val)
	}
	buf = append(buf, '}', '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.out.Write(buf)
	return err
}

func appendJSONValue(dst []byte, val any) []byte {
	switch v := val.(type) {
	case string:
		return jsonenc.AppendString(dst, v)
	case bool:
		return strconv.AppendBool(dst, v)
	case int:
		return strconv.AppendInt(dst, int64(v), 10)
	case int32:
		return strconv.AppendInt(dst, int64(v), 10)
	case int64:
		return strconv.AppendInt(dst, v, 10)
	case uint8:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint32:
		return strconv.AppendUint(dst, uint64(v), 10)
	case uint64:
		return strconv.AppendUint(dst, v, 10)
	case float64:
		return jsonenc.AppendFloat64(dst, v)
	default:
		return jsonenc.AppendString(dst, fmt.Sprint(v))
	}
}

func levelName(l logiface.Level) string {
	switch l {
	case logiface.LevelEmergency, logiface.LevelAlert, logiface.LevelCritical:
		return "critical"
	case logiface.LevelError:
		return "error"
	case logiface.LevelWarning:
		return "warn"
	case logiface.LevelDebug, logiface.LevelTrace:
		return "debug"
	default:
		return "info"
	}
}

// logifaceLogger adapts a *logiface.Logger[*qfEvent] into the framework's
// plain Logger interface, and rate-limits WARN-level lines per category
// using catrate's sliding-window limiter — a flapping producer (e.g. a
// queue that repeatedly grazes its overflow margin) must not be able to
// flood the log the way an ISR storm could saturate a trace buffer on the
// original embedded target.
type logifaceLogger struct {
	log     *logiface.Logger[*qfEvent]
	factory *qfEventFactory
	warnRL  *catrate.Limiter
}

// NewDefaultLogger returns the framework's default Logger: structured
// fields via logiface, JSON Lines serialization via jsonenc, with
// per-category WARN-level rate limiting via go-catrate (at most 5 lines
// per second, 60 per minute, per category).
func NewDefaultLogger(out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	factory := newQFEventFactory()
	l := logiface.New[*qfEvent](
		logiface.WithEventFactory[*qfEvent](factory),
		logiface.WithEventReleaser[*qfEvent](factory),
		logiface.WithWriter[*qfEvent](NewJSONLineWriter(out)),
	)
	return &logifaceLogger{
		log:     l,
		factory: factory,
		warnRL: catrate.NewLimiter(map[time.Duration]int{
			time.Second: 5,
			time.Minute: 60,
		}),
	}
}

func toLogifaceLevel(l Level) logiface.Level {
	switch l {
	case LevelCritical:
		return logiface.LevelCritical
	case LevelError:
		return logiface.LevelError
	case LevelWarn:
		return logiface.LevelWarning
	case LevelDebug:
		return logiface.LevelDebug
	default:
		return logiface.LevelInformational
	}
}

func (l *logifaceLogger) IsEnabled(level Level) bool {
	return l.log.Level() >= toLogifaceLevel(level)
}

func (l *logifaceLogger) Log(entry LogEntry) {
	if entry.Level == LevelWarn {
		if _, ok := l.warnRL.Allow(entry.Category); !ok {
			return
		}
	}
	b := l.log.Build(toLogifaceLevel(entry.Level))
	if b == nil {
		return
	}
	if entry.Category != "" {
		b = b.Str("category", entry.Category)
	}
	for k, v := range entry.Fields {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Msg)
}

// --- Framework logging helpers --------------------------------------------

func (fw *Framework) log(level Level, category, msg string, fields map[string]any) {
	logger := fw.cfg.logger
	if logger == nil || !logger.IsEnabled(level) {
		return
	}
	logger.Log(LogEntry{Level: level, Category: category, Msg: msg, Fields: fields, Time: time.Now()})
}

func (fw *Framework) logCritical(category string, err error) {
	logger := fw.cfg.logger
	if logger == nil {
		return
	}
	logger.Log(LogEntry{Level: LevelCritical, Category: category, Msg: err.Error(), Err: err, Time: time.Now()})
}
