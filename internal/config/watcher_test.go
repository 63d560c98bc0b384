package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ekisa-team/arniepye/internal/envvar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	t.Setenv(envvar.ArnieServer, "")
	t.Setenv(envvar.ArnieDownloadDir, "")

	path := writeConfig(t, validYAML)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	watcher, err := NewWatcher(ctx, path, func(cfg *Config, err error) {
		if err == nil {
			select {
			case reloaded <- cfg:
			default:
			}
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "pkgs.example.com:8080", watcher.Snapshot().Server)

	updated := strings.Replace(validYAML, "pkgs.example.com:8080", "pkgs.example.com:9090", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "pkgs.example.com:9090", cfg.Server)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	assert.Equal(t, "pkgs.example.com:9090", watcher.Snapshot().Server)
	assert.GreaterOrEqual(t, watcher.ReloadCount(), uint32(1))
}

func TestWatcher_ReportsInvalidReload(t *testing.T) {
	t.Setenv(envvar.ArnieServer, "")
	t.Setenv(envvar.ArnieDownloadDir, "")

	path := writeConfig(t, validYAML)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failed := make(chan error, 1)
	watcher, err := NewWatcher(ctx, path, func(cfg *Config, err error) {
		if err != nil {
			select {
			case failed <- err:
			default:
			}
		}
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("version: [1"), 0o644))

	select {
	case err := <-failed:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("invalid reload was not reported")
	}

	// The last good config stays current.
	assert.Equal(t, "pkgs.example.com:8080", watcher.Snapshot().Server)
}

func TestNewWatcher_MissingFile(t *testing.T) {
	_, err := NewWatcher(context.Background(), writeConfig(t, validYAML)+".missing", func(*Config, error) {})
	assert.Error(t, err)
}
