package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sciclub/clubsite/src/ansicolor"
	"github.com/sciclub/clubsite/src/config"
	"github.com/sciclub/clubsite/src/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	ansicolor.Disable()
}

func TestPrettyWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(NewPrettyZerologWriter(&buf))

	logger.Info().Str("article", "abc123").Msg("published")
	out := buf.String()
	assert.Contains(t, out, "INFO: published")
	assert.Contains(t, out, `article: "abc123"`)

	buf.Reset()
	logger.Error().Err(oops.New(errors.New("disk full"), "failed to store asset")).Msg("upload failed")
	out = buf.String()
	assert.Contains(t, out, "ERROR: failed to store asset: disk full")
}

func TestPrettyWriterPassesThroughNonJson(t *testing.T) {
	var buf bytes.Buffer
	w := NewPrettyZerologWriter(&buf)
	n, err := w.Write([]byte("not json\n"))
	require.Nil(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "not json\n", buf.String())
}

func TestFileOutput(t *testing.T) {
	var console bytes.Buffer
	file := filepath.Join(t.TempDir(), "clubsite.log")
	logger := zerolog.New(NewWriter(config.LogConfig{File: file, MaxSizeMB: 1, MaxBackups: 1}, &console))

	logger.Warn().Msg("rotating soon")

	contents, err := os.ReadFile(file)
	require.Nil(t, err)
	assert.Contains(t, string(contents), `"message":"rotating soon"`)
	assert.Contains(t, console.String(), "WARN: rotating soon")
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, GlobalLogger(), ExtractLogger(context.Background()))

	logger := zerolog.Nop()
	ctx := AttachLoggerToContext(&logger, context.Background())
	assert.Same(t, &logger, ExtractLogger(ctx))
}

func TestLogPanics(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	assert.NotPanics(t, func() {
		defer LogPanics(&logger)
		panic("shutdown went sideways")
	})
	assert.Contains(t, buf.String(), `"recovered":"shutdown went sideways"`)
	assert.Contains(t, buf.String(), `"message":"recovered from panic"`)

	buf.Reset()
	assert.NotPanics(t, func() {
		defer LogPanics(&logger)
	})
	assert.Empty(t, buf.String())
}
