package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	cfg := fmt.Sprintf(`
server:
    address: localhost:0
log:
    server:
        path: %[1]s/logs/server.log
        level: debug
    requests:
        path: %[1]s/logs/requests.log
        level: info
    events:
        path: %[1]s/logs/events.log
        level: info
db:
    path: %[1]s/data/wikigame.db
%[2]s`, dir, extra)
	path := filepath.Join(dir, "wikigame.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "")

	// A context that cancels quickly verifies the startup sequence.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	require.NoError(t, run(ctx, path))

	_, err := os.Stat(filepath.Join(dir, "data", "wikigame.db"))
	assert.NoError(t, err, "database not created")
	_, err = os.Stat(filepath.Join(dir, "logs", "server.log"))
	assert.NoError(t, err, "server log not created")
}

func TestRun_BadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "game:\n    candidate_limit: 0\n")
	err := run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candidate_limit")
}

func TestFetchCommand(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "parse", r.URL.Query().Get("action"))
		assert.Equal(t, "Banana", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"parse":{"title":"Banana","text":{"*":"<div class=\"mw-parser-output\"><table class=\"infobox\"><tr><td>Musa</td></tr></table><p>A banana is an elongated, edible <a href=\"/wiki/Fruit\">fruit</a> from <a href=\"/wiki/Musa_(genus)\">Musa</a>.</p></div>"}}}`))
	}))
	defer ts.Close()

	dir := t.TempDir()
	path := writeConfig(t, dir, fmt.Sprintf("wikipedia:\n    language: en\n    endpoint: %s\n", ts.URL))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", path, "fetch", "Banana", "-n", "1"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	got := out.String()
	assert.Contains(t, got, "Title:     Banana")
	assert.Contains(t, got, "URL:       https://en.wikipedia.org/wiki/Banana")
	assert.Contains(t, got, "Links:     2")
	assert.Contains(t, got, "  1. Fruit")
	assert.NotContains(t, got, "  2. Musa (genus)")
	assert.Contains(t, got, "A banana is an elongated, edible fruit from Musa.")
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "wikigame.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init-config", "--config", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "candidate_limit: 5")
}
