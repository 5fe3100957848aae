// Package logger configures the global zerolog logger of the generator.
//
// Records are written in console format to stderr, the generated code may
// take stdout. Repeated records of one caller can be condensed, which keeps
// advisories readable for manifests with many fields of an unhandled type.
package logger

import (
	"container/ring"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	logFile   io.WriteCloser
	output    io.Writer = os.Stderr
	errBuffer           = &LogBuffer{
		Level: zerolog.ErrorLevel,
		Size:  10,
	}
	formatter = &zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    false,
		TimeFormat: time.RFC3339,
	}
	condenser = &CondenseWriter{
		Condense:    0,
		LevelWriter: zerolog.MultiLevelWriter(formatter, errBuffer),
	}
)

// CondenseWriter handles similar writes by level and caller field
type CondenseWriter struct {
	zerolog.LevelWriter
	mu       sync.Mutex
	once     sync.Once
	cache    *cache.Cache
	callerRe *regexp.Regexp
	Condense time.Duration
}

// Write implements io.Writer interface
func (w *CondenseWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter interface
func (w *CondenseWriter) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	w.init()
	w.mu.Lock()
	defer w.mu.Unlock()

	ck := string(append([]byte{byte(lvl), ':'}, w.callerRe.Find(p)...))
	/* expired keys are reported before counting the current write,
	workaround on https://github.com/patrickmn/go-cache/issues/48 */
	w.cache.DeleteExpired()
	if _, ok := w.cache.Get(ck); ok {
		_ = w.cache.Increment(ck, 1)
		return len(p), nil
	}
	if w.Condense > 0 {
		_ = w.cache.Add(ck, uint16(0), w.Condense)
	}
	return w.LevelWriter.WriteLevel(lvl, p)
}

// Flush reports all pending condensed records and resets the counters.
// Useful on exit of a short run, when the records never expire.
func (w *CondenseWriter) Flush() {
	w.init()
	w.mu.Lock()
	defer w.mu.Unlock()
	for ck, item := range w.cache.Items() {
		w.report(ck, item.Object)
	}
	w.cache.Flush()
}

func (w *CondenseWriter) init() {
	w.once.Do(func() {
		defaultExpiration, cleanupInterval := time.Minute*10, time.Second*10
		if w.Condense > 0 {
			defaultExpiration = w.Condense * 2
			cleanupInterval = w.Condense / 4
		}
		w.cache = cache.New(defaultExpiration, cleanupInterval)
		w.cache.OnEvicted(w.report)
		w.callerRe = regexp.MustCompile(`"` + zerolog.CallerFieldName + `":"[^"]*"`)
	})
}

func (w *CondenseWriter) report(ck string, i interface{}) {
	v, ok := i.(uint16)
	if !ok || v == 0 || len(ck) < 2 {
		return
	}
	lvl, caller := zerolog.Level(int8(ck[0])), ck[2:]

	buf := append(make([]byte, 0, 200), '{')
	buf = append(buf, '"')
	buf = append(buf, zerolog.LevelFieldName...)
	buf = append(buf, `":"`...)
	buf = append(buf, lvl.String()...)
	buf = append(buf, `","`...)
	buf = append(buf, zerolog.TimestampFieldName...)
	buf = append(buf, `":`...)
	buf = appendTimestamp(buf, time.Now())
	if caller != "" {
		buf = append(buf, ',')
		buf = append(buf, caller...)
	}
	buf = append(buf, `,"`...)
	buf = append(buf, zerolog.MessageFieldName...)
	buf = append(buf, `":"[condensed `...)
	buf = strconv.AppendInt(buf, int64(v), 10)
	buf = append(buf, ` more entries last `...)
	buf = strconv.AppendInt(buf, int64(w.Condense.Seconds()), 10)
	buf = append(buf, ` seconds]"}`...)
	buf = append(buf, '\n')
	_, _ = w.LevelWriter.WriteLevel(lvl, buf)
}

func appendTimestamp(dst []byte, ts time.Time) []byte {
	switch zerolog.TimeFieldFormat {
	case zerolog.TimeFormatUnix:
		return strconv.AppendInt(dst, ts.Unix(), 10)
	case zerolog.TimeFormatUnixMs:
		return strconv.AppendInt(dst, ts.UnixMilli(), 10)
	case zerolog.TimeFormatUnixMicro:
		return strconv.AppendInt(dst, ts.UnixMicro(), 10)
	}
	dst = append(dst, '"')
	dst = ts.AppendFormat(dst, zerolog.TimeFieldFormat)
	return append(dst, '"')
}

// LogBuffer collects writes if level passed
type LogBuffer struct {
	mu    sync.Mutex
	once  sync.Once
	ring  *ring.Ring
	Level zerolog.Level
	Size  int
}

// Records returns collected writes, oldest first
func (lb *LogBuffer) Records() []LogRecord {
	lb.once.Do(lb.init)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	rec := []LogRecord{}
	lb.ring.Do(func(p interface{}) {
		if p != nil {
			rec = append(rec, p.(LogRecord))
		}
	})
	return rec
}

// Write implements io.Writer interface
func (lb *LogBuffer) Write(p []byte) (int, error) {
	return len(p), nil
}

// WriteLevel implements zerolog.LevelWriter interface
func (lb *LogBuffer) WriteLevel(lvl zerolog.Level, p []byte) (int, error) {
	lb.once.Do(lb.init)
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if lvl >= lb.Level {
		/* store the copy as source could be updated */
		cp := make([]byte, len(p))
		copy(cp, p)
		lb.ring.Value = LogRecord{cp, lvl}
		lb.ring = lb.ring.Next()
	}
	return len(p), nil
}

func (lb *LogBuffer) init() {
	if lb.Size < 1 {
		lb.Size = 1
	}
	lb.ring = ring.New(lb.Size)
}

// LogRecord wraps JSON-like data from logger
type LogRecord struct {
	buf []byte
	lvl zerolog.Level
}

// Level returns the record level
func (p LogRecord) Level() zerolog.Level { return p.lvl }

// MarshalJSON implements Marshaller interface
func (p LogRecord) MarshalJSON() ([]byte, error) { return p.buf, nil }

// Option defines logger option type
type Option func()

// SetLogger sets the global logger with options
func SetLogger(opts ...Option) {
	/* prevent writes */
	log.Logger = zerolog.Nop()
	/* reset to defaults */
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	output = os.Stderr
	condenser.Condense = 0
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	/* apply options */
	lastErrors := LastErrors()
	for _, opt := range opts {
		opt()
	}
	for _, p := range lastErrors {
		_, _ = errBuffer.WriteLevel(p.lvl, p.buf)
	}
	formatter.Out = output
	if logFile != nil {
		formatter.Out = io.MultiWriter(output, logFile)
	}
	condenser.LevelWriter = zerolog.MultiLevelWriter(formatter, errBuffer)
	/* set logger */
	log.Logger = zerolog.New(condenser).
		With().Timestamp().Caller().
		Logger()
}

// Flush reports pending condensed records
func Flush() {
	condenser.Flush()
}

// WithLastErrors sets count of buffered error writes
func WithLastErrors(n int) Option {
	return func() {
		errBuffer = &LogBuffer{
			Level: zerolog.ErrorLevel,
			Size:  n,
		}
	}
}

// WithLevel sets level option
func WithLevel(lvl zerolog.Level) Option {
	return func() { zerolog.SetGlobalLevel(lvl) }
}

// WithLogFile sets filelog option
func WithLogFile(w io.WriteCloser) Option {
	return func() {
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = w
	}
}

// WithOutput sets the console output, stderr by default
func WithOutput(w io.Writer) Option {
	return func() { output = w }
}

// WithCondense enables condensing similar records
func WithCondense(d time.Duration) Option {
	return func() { condenser.Condense = d }
}

// WithNoColor sets formatter option
func WithNoColor(b bool) Option {
	return func() { formatter.NoColor = b }
}

// WithTimeFormat sets formatter option
func WithTimeFormat(s string) Option {
	return func() { formatter.TimeFormat = s }
}

// LastErrors returns last error writes
func LastErrors() []LogRecord {
	return errBuffer.Records()
}

// WriteLogBuffer writes buffered data to current logger
func WriteLogBuffer(lb *LogBuffer) {
	lvl := zerolog.GlobalLevel()
	for _, p := range lb.Records() {
		if p.lvl >= lvl {
			_, _ = condenser.WriteLevel(p.lvl, p.buf)
		}
	}
}
