package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	pythonBaseURL  = "https://www.python.org/ftp/python"
	pywin32BaseURL = "https://downloads.sourceforge.net/project/pywin32/pywin32/Build%20218"
)

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Version:          "1",
		ServerCandidates: []string{"arnie", "arnie-dev", "127.0.0.1:8080"},
		DownloadDir:      os.TempDir(),
		Interpreters: []InterpreterConfig{
			{
				Name:       "python2",
				Executable: `C:\Python27\python.exe`,
				Installer: ArtifactConfig{
					BaseURL:  pythonBaseURL + "/2.7.6",
					Filename: "python-2.7.6.msi",
					Kind:     ArtifactKindMSI,
					Args:     []string{"/passive"},
				},
				Extension: ArtifactConfig{
					BaseURL:  pywin32BaseURL,
					Filename: "pywin32-218.win32-py2.7.exe",
					Kind:     ArtifactKindEXE,
				},
			},
			{
				Name:       "python3",
				Executable: `C:\Python33\python.exe`,
				Installer: ArtifactConfig{
					BaseURL:  pythonBaseURL + "/3.3.5",
					Filename: "python-3.3.5.msi",
					Kind:     ArtifactKindMSI,
					Args:     []string{"/passive"},
				},
				Extension: ArtifactConfig{
					BaseURL:  pywin32BaseURL,
					Filename: "pywin32-218.win32-py3.3.exe",
					Kind:     ArtifactKindEXE,
				},
			},
		},
		Bootstrap: BootstrapConfig{
			URL:       "http://" + ServerPlaceholder + "/packages/bootstrap/bootstrap.py",
			Filename:  "bootstrap.py",
			ClearFlag: "--clear",
		},
		Transfer: TransferConfig{
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			Timeout:    10 * time.Minute,
		},
		Install: InstallConfig{
			Timeout: 30 * time.Minute,
			MSIExec: "msiexec",
		},
		PauseOnFailure: true,
	}
}

// DefaultConfigPath returns the default path for the arniepye config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "arniepye", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "arniepye")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "arniepye")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "arniepye")
		}
		return filepath.Join(home, ".config", "arniepye")
	}
}

// DefaultLogPath returns the default path for the arniepye log directory.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "arniepye", "logs")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "arniepye", "logs")
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "arniepye")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, "arniepye", "logs")
		}
		return filepath.Join(home, ".local", "state", "arniepye", "logs")
	}
}
