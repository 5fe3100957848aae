package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCondense(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLogger(
		WithOutput(buf),
		WithNoColor(true),
		WithLevel(zerolog.DebugLevel),
		WithCondense(time.Minute))
	defer SetLogger(WithOutput(io.Discard))

	for i := 0; i < 3; i++ {
		log.Warn().Int("i", i).Msg("repeated advisory")
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "repeated advisory"))
	assert.NotContains(t, buf.String(), "condensed")

	Flush()
	assert.Contains(t, buf.String(), "[condensed 2 more entries last 60 seconds]")
	assert.Contains(t, buf.String(), "logger_test.go")

	/* counters are reset by flush */
	buf.Reset()
	Flush()
	assert.Empty(t, buf.String())
}

func TestLogNoCondense(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLogger(WithOutput(buf), WithNoColor(true), WithLevel(zerolog.DebugLevel))
	defer SetLogger(WithOutput(io.Discard))

	for i := 0; i < 3; i++ {
		log.Info().Msg("each one")
	}
	Flush()
	assert.Equal(t, 3, strings.Count(buf.String(), "each one"))
	assert.NotContains(t, buf.String(), "condensed")
}

func TestLogLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetLogger(WithOutput(buf), WithNoColor(true), WithLevel(zerolog.WarnLevel))
	defer SetLogger(WithOutput(io.Discard), WithLevel(zerolog.DebugLevel))

	log.Info().Msg("message info")
	log.Warn().Msg("message warn")
	assert.NotContains(t, buf.String(), "message info")
	assert.Contains(t, buf.String(), "message warn")
	assert.Contains(t, buf.String(), "WRN")
}

func TestLastErrors(t *testing.T) {
	SetLogger(WithOutput(io.Discard), WithLastErrors(2), WithLevel(zerolog.DebugLevel))

	log.Error().Msg("err1")
	log.Warn().Msg("not an error")
	log.Error().Msg("err2")
	log.Error().Msg("err3")

	records := LastErrors()
	require.Len(t, records, 2)
	p2, _ := records[0].MarshalJSON()
	p3, _ := records[1].MarshalJSON()
	assert.Contains(t, string(p2), "err2")
	assert.Contains(t, string(p3), "err3")
	assert.Equal(t, zerolog.ErrorLevel, records[1].Level())

	/* kept across reconfiguration */
	SetLogger(WithOutput(io.Discard))
	assert.Len(t, LastErrors(), 2)
}

func TestWriteLogBuffer(t *testing.T) {
	lb := &LogBuffer{Level: zerolog.TraceLevel, Size: 4}
	log.Logger = zerolog.New(lb).With().Timestamp().Logger()
	log.Debug().Msg("buffered debug")
	log.Info().Msg("buffered info")

	buf := &bytes.Buffer{}
	SetLogger(WithOutput(buf), WithNoColor(true), WithLevel(zerolog.InfoLevel))
	defer SetLogger(WithOutput(io.Discard), WithLevel(zerolog.DebugLevel))
	WriteLogBuffer(lb)

	assert.Contains(t, buf.String(), "buffered info")
	assert.NotContains(t, buf.String(), "buffered debug")
}

func TestLogFileOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harnessgen.log")
	buf := &bytes.Buffer{}
	SetLogger(
		WithOutput(buf),
		WithNoColor(true),
		WithLevel(zerolog.DebugLevel),
		WithLogFile(&LogFile{FilePath: path}))

	log.Info().Str("field", "y").Msg("written twice")
	SetLogger(WithOutput(io.Discard)) // closes the file

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written twice")
	assert.Contains(t, string(content), "field=y")
	assert.Contains(t, buf.String(), "written twice")
}

func TestLogFileRotate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotate.log")
	f := &LogFile{FilePath: path, MaxSize: 10, Rotate: 2}
	defer f.Close()

	for _, s := range []string{"aaaaa\n", "bbbbb\n", "ccccc\n", "ddddd\n"} {
		n, err := f.Write([]byte(s))
		require.NoError(t, err)
		assert.Equal(t, len(s), n)
	}

	read := func(name string) string {
		content, err := os.ReadFile(name)
		require.NoError(t, err)
		return string(content)
	}
	assert.Equal(t, "ddddd\n", read(path))
	assert.Equal(t, "ccccc\n", read(path+".1"))
	assert.Equal(t, "bbbbb\n", read(path+".2"))
	_, err := os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestLogFileTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncate.log")
	f := &LogFile{FilePath: path, MaxSize: 10}
	defer f.Close()

	_, err := f.Write([]byte("aaaaa\n"))
	require.NoError(t, err)
	_, err = f.Write([]byte("bbbbb\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bbbbb\n", string(content))
	_, err = os.Stat(path + ".1")
	assert.True(t, os.IsNotExist(err))
}
