package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanshare/internal/config"
)

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf)

	out := buf.String()
	for _, opt := range []string{"-h", "-port", "-dir", "-max", "-refresh", "-cleanup", "-no-qr"} {
		assert.Contains(t, out, opt)
	}
}

func TestPrintBanner(t *testing.T) {
	cfg := config.Config{Host: "0.0.0.0", Port: 8080, MaxFileSizeMB: 50, RefreshInterval: 30000}

	var buf bytes.Buffer
	printBanner(&buf, cfg, "/srv/uploads", []string{"http://192.168.1.20:8080", "http://localhost:8080"})

	out := buf.String()
	assert.Contains(t, out, "http://192.168.1.20:8080")
	assert.Contains(t, out, "http://localhost:8080")
	assert.Contains(t, out, "/srv/uploads")
	assert.Contains(t, out, "50 MB")
	assert.Contains(t, out, "30s")
	assert.Contains(t, out, "0.0.0.0")
}

func TestRun_Help(t *testing.T) {
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-port", "0"}, &stdout, &stderr)
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"-host", "127.0.0.1", "-port", "38517", "-dir", "shared", "-no-qr"}, &stdout, &stderr)
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(dir, "shared"))
	assert.Contains(t, stdout.String(), "LAN Share is running")
	assert.NotContains(t, stdout.String(), "Scan to open")
}
