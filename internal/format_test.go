package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFormatterDefault(t *testing.T) {
	f, err := NewRecordFormatter("")
	require.NoError(t, err)

	out, err := f.Format(&sampleRecords[0])
	require.NoError(t, err)
	assert.Equal(t, "# Intro\n\n<https://www.youtube.com/watch?v=aaaaaaaaaaa>\n\nhello\n", out)
}

func TestRecordFormatterInlineAndFile(t *testing.T) {
	f, err := NewRecordFormatter("{{.Title}}|{{.Content}}")
	require.NoError(t, err)
	out, err := f.Format(&sampleRecords[0])
	require.NoError(t, err)
	assert.Equal(t, "Intro|hello", out)

	path := filepath.Join(t.TempDir(), "record.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.URL}}"), 0644))
	f, err = NewRecordFormatter(path)
	require.NoError(t, err)
	out, err = f.Format(&sampleRecords[1])
	require.NoError(t, err)
	assert.Equal(t, "https://youtu.be/bbbbbbbbbbb", out)

	_, err = NewRecordFormatter("{{.Title")
	assert.ErrorContains(t, err, "parsing format template")

	f, err = NewRecordFormatter("{{.Missing}}")
	require.NoError(t, err)
	_, err = f.Format(&sampleRecords[0])
	assert.ErrorContains(t, err, "executing format template")
}

func TestWriteRecordPlainWhenNotTerminal(t *testing.T) {
	f, err := NewRecordFormatter("{{.Content}}")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, f, &sampleRecords[1]))
	assert.Equal(t, "line one\nline two", buf.String())
	assert.False(t, IsTerminal(&buf))
}

func TestIsLikelyFilePath(t *testing.T) {
	assert.True(t, IsLikelyFilePath("./format.tmpl"))
	assert.True(t, IsLikelyFilePath("record.md"))
	assert.False(t, IsLikelyFilePath("{{.Title}}"))
	assert.False(t, IsLikelyFilePath("Title: {{.Title}}\n"))
	assert.False(t, IsLikelyFilePath("just some words"))
}

func TestRenderRecordsTable(t *testing.T) {
	out := RenderRecordsTable(sampleRecords, 6)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Intro")
	assert.Contains(t, out, "lin...")
	assert.Contains(t, strings.ToLower(out), "3 records")
}

func TestRenderFailuresTable(t *testing.T) {
	out := RenderFailuresTable([]VideoFailure{{Index: 4, URL: videoB, Err: resolutionErr(videoB, "private video", nil)}})
	assert.Contains(t, out, "5")
	assert.Contains(t, out, "private video")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", preview(" a\n b\tc ", 0))
	assert.Equal(t, "héllo", preview("héllo", 5))
	assert.Equal(t, "hé...", preview("héllo world", 5))
	assert.Equal(t, "hé", preview("héllo", 2))
	assert.False(t, strings.Contains(preview("a\nb", 10), "\n"))
}
