package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ekisa-team/arniepye/internal/envvar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
version: "1"
server: pkgs.example.com:8080
download_dir: /var/cache/arnie
interpreters:
  - name: py27
    executable: C:\Python27\python.exe
    installer: {base_url: "https://mirror/2.7", filename: python-2.7.msi, kind: msi}
    extension: {base_url: "https://mirror/ext", filename: ext-2.7.exe, kind: exe}
  - name: py33
    executable: C:\Python33\python.exe
    installer: {base_url: "https://mirror/3.3", filename: python-3.3.msi, kind: msi, args: ["/quiet"]}
    extension: {base_url: "https://mirror/ext", filename: ext-3.3.exe, kind: exe}
transfer:
  max_retries: 5
  retry_delay: 250ms
pause_on_failure: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Interpreters, 2)
	assert.True(t, cfg.NeedsServer())
	assert.True(t, cfg.PauseOnFailure)
	assert.Equal(t, "--clear", cfg.Bootstrap.ClearFlag)
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	t.Setenv(envvar.ArnieServer, "")
	t.Setenv(envvar.ArnieDownloadDir, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	t.Setenv(envvar.ArnieServer, "")
	t.Setenv(envvar.ArnieDownloadDir, "")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "pkgs.example.com:8080", cfg.Server)
	assert.Equal(t, "/var/cache/arnie", cfg.DownloadDir)
	require.Len(t, cfg.Interpreters, 2)
	assert.Equal(t, "py27", cfg.Interpreters[0].Name)
	assert.Equal(t, []string{"/quiet"}, cfg.Interpreters[1].Installer.Args)
	assert.Equal(t, 5, cfg.Transfer.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Transfer.RetryDelay)
	assert.False(t, cfg.PauseOnFailure)

	// Unset sections keep their defaults.
	assert.Equal(t, Default().Bootstrap, cfg.Bootstrap)
	assert.Equal(t, Default().Transfer.Timeout, cfg.Transfer.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv(envvar.ArnieServer, "override:9000")
	t.Setenv(envvar.ArnieDownloadDir, "/srv/artifacts")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "override:9000", cfg.Server)
	assert.Equal(t, "/srv/artifacts", cfg.DownloadDir)
}

func TestLoadAndValidate_SchemaRejections(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing version", `server: x`},
		{"unknown field", "version: \"1\"\nbogus: true"},
		{"bad duration", "version: \"1\"\ntransfer:\n  retry_delay: soon"},
		{"bad kind", `
version: "1"
interpreters:
  - {name: a, executable: a, installer: {base_url: u, filename: f, kind: zip}, extension: {base_url: u, filename: f, kind: exe}}
  - {name: b, executable: b, installer: {base_url: u, filename: f, kind: msi}, extension: {base_url: u, filename: f, kind: exe}}
`},
		{"single interpreter", `
version: "1"
interpreters:
  - {name: a, executable: a, installer: {base_url: u, filename: f, kind: msi}, extension: {base_url: u, filename: f, kind: exe}}
`},
		{"empty clear flag", "version: \"1\"\nbootstrap:\n  clear_flag: \"\""},
		{"invalid yaml", "version: [1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAndValidate(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadAndValidate_MissingFile(t *testing.T) {
	_, err := LoadAndValidate(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestValidate_DuplicateInterpreter(t *testing.T) {
	cfg := Default()
	cfg.Interpreters[1].Name = cfg.Interpreters[0].Name

	assert.ErrorContains(t, cfg.Validate(), "duplicate name")
}

func TestValidate_RequiresClearFlag(t *testing.T) {
	cfg := Default()
	cfg.Bootstrap.ClearFlag = ""

	assert.ErrorContains(t, cfg.Validate(), "clear_flag is required")
}

func TestBootstrapURL(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://arnie:8080/packages/bootstrap/bootstrap.py", cfg.BootstrapURL("arnie:8080"))

	cfg.Bootstrap.URL = "https://static.example.com/bootstrap.py"
	assert.False(t, cfg.NeedsServer())
	assert.Equal(t, cfg.Bootstrap.URL, cfg.BootstrapURL("ignored"))
}

func TestLoad_ExampleConfig(t *testing.T) {
	t.Setenv(envvar.ArnieServer, "")
	t.Setenv(envvar.ArnieDownloadDir, "")

	cfg, err := Load(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default().Interpreters, cfg.Interpreters)
	assert.Equal(t, Default().Bootstrap, cfg.Bootstrap)
	assert.NotContains(t, cfg.DownloadDir, "~")
}
