package placescraper

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

type Logger interface {
	Printf(format string, a ...interface{})
}

// OutcomeLogger is a Logger that can report the outcome of a lookup apart
// from page operations. Loggers without it get outcomes through Printf.
type OutcomeLogger interface {
	Logger
	Infof(format string, a ...interface{})
	Warnf(format string, a ...interface{})
}

// BufferedLogger keeps everything in memory. It is safe for concurrent use
// by the workers of a batch.
type BufferedLogger struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (buflog *BufferedLogger) Printf(format string, a ...interface{}) {
	buflog.mu.Lock()
	defer buflog.mu.Unlock()
	fmt.Fprintf(&buflog.buffer, format, a...)
	buflog.buffer.WriteByte('\n')
}

func (buflog *BufferedLogger) String() string {
	buflog.mu.Lock()
	defer buflog.mu.Unlock()
	return buflog.buffer.String()
}

func (buflog *BufferedLogger) Flush(logger Logger) {
	buflog.mu.Lock()
	defer buflog.mu.Unlock()
	s := buflog.buffer.String()
	if s != "" {
		logger.Printf("%v", strings.TrimSuffix(s, "\n"))
	}
	buflog.buffer.Reset()
}

// ZerologLogger writes every Printf as a debug event of the wrapped logger.
// Lookup outcomes go out at info and warn level.
type ZerologLogger struct {
	Log zerolog.Logger
}

func (logger ZerologLogger) Printf(format string, a ...interface{}) {
	logger.Log.Debug().Msgf(format, a...)
}

func (logger ZerologLogger) Infof(format string, a ...interface{}) {
	logger.Log.Info().Msgf(format, a...)
}

func (logger ZerologLogger) Warnf(format string, a ...interface{}) {
	logger.Log.Warn().Msgf(format, a...)
}
