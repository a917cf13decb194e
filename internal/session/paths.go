package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.wamirror.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".wamirror")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// LockPath returns the lock file path for a session.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// SessionDBPath returns the whatsmeow session.db path.
func SessionDBPath(name string) string {
	return filepath.Join(Dir(name), "session.db")
}

// SnapshotPath returns the mirror snapshot export path.
func SnapshotPath(name string) string {
	return filepath.Join(Dir(name), "snapshot.db")
}

// QRPath returns where the pairing QR code image is written.
func QRPath(name string) string {
	return filepath.Join(Dir(name), "pair-qr.png")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the daemon log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "wamirrord.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with owner-only
// permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
