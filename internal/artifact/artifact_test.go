package artifact

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ekisa-team/arniepye/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, filename, want string
	}{
		{"https://host/dir", "file.msi", "https://host/dir/file.msi"},
		{"https://host/dir/", "file.msi", "https://host/dir/file.msi"},
		{"https://host/dir/", "/file.msi", "https://host/dir/file.msi"},
		{"", "file.msi", "file.msi"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveURL(tt.base, tt.filename))
	}
}

func TestNewPlan_Order(t *testing.T) {
	cfg := config.Default()
	cfg.DownloadDir = t.TempDir()

	plan, err := NewPlan(cfg, "arnie:8080")
	require.NoError(t, err)

	names := make([]string, 0, len(plan.Fetch))
	for _, d := range plan.Fetch {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"python2-installer",
		"python2-extension",
		"python3-installer",
		"python3-extension",
		"bootstrap",
	}, names)

	require.Len(t, plan.Install, 4)
	assert.Equal(t, plan.Fetch[:4], plan.Install)

	assert.Equal(t, "https://www.python.org/ftp/python/2.7.6/python-2.7.6.msi", plan.Fetch[0].URL)
	assert.Equal(t, filepath.Join(cfg.DownloadDir, "python-2.7.6.msi"), plan.Fetch[0].Dest)
	assert.Equal(t, config.ArtifactKindMSI, plan.Fetch[0].Kind)
	assert.Equal(t, config.ArtifactKindEXE, plan.Fetch[1].Kind)
	assert.Equal(t, "http://arnie:8080/packages/bootstrap/bootstrap.py", plan.Bootstrap.URL)
	assert.Len(t, plan.Registry.List(), 5)
}

func TestNewPlan_BootstrapRuns(t *testing.T) {
	cfg := config.Default()
	cfg.DownloadDir = t.TempDir()

	plan, err := NewPlan(cfg, "arnie")
	require.NoError(t, err)
	require.Len(t, plan.Runs, 2)

	script := filepath.Join(cfg.DownloadDir, "bootstrap.py")

	assert.Equal(t, "python3", plan.Runs[0].Interpreter)
	assert.True(t, plan.Runs[0].Clear)
	assert.Equal(t, []string{script, "--clear"}, plan.Runs[0].Args)

	assert.Equal(t, "python2", plan.Runs[1].Interpreter)
	assert.False(t, plan.Runs[1].Clear)
	assert.Equal(t, []string{script}, plan.Runs[1].Args)
}

func TestNewPlan_RequiresServer(t *testing.T) {
	_, err := NewPlan(config.Default(), "")
	assert.ErrorIs(t, err, ErrNoServer)

	cfg := config.Default()
	cfg.Bootstrap.URL = "https://static.example.com/bootstrap.py"
	plan, err := NewPlan(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.Bootstrap.URL, plan.Bootstrap.URL)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	a := NewDescriptor("a", config.ArtifactKindMSI, "u", "/tmp", "a.msi")
	b := NewDescriptor("b", config.ArtifactKindEXE, "u", "/tmp", "b.exe")

	require.NoError(t, reg.Add(a))
	require.NoError(t, reg.Add(b))
	assert.Error(t, reg.Add(a))

	assert.Equal(t, []*Descriptor{a, b}, reg.List())

	require.NoError(t, reg.SetStatus("a", StatusSkipped))
	require.NoError(t, reg.SetError("b", errors.New("boom")))
	assert.Equal(t, StatusSkipped, a.Status)
	assert.NotNil(t, a.UpdatedAt)
	assert.Equal(t, StatusFailed, b.Status)
	assert.Equal(t, "boom", b.Error)
	assert.Equal(t, 1, reg.Count(StatusFailed))

	assert.ErrorIs(t, reg.SetStatus("missing", StatusFetched), ErrNotFound)

	_, ok := reg.Get("missing")
	assert.False(t, ok)
}
