// Package runtimepath locates the per-user files of a running daemon.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

const (
	socketName = "framewm.sock"
	logName    = "framewm.log"
)

// Dir returns the per-user runtime directory: $XDG_RUNTIME_DIR, then
// /run/user/<uid>, then /tmp/framewm-runtime-<uid>. The /tmp fallback is
// created on demand and refused unless it is a private directory owned by
// the caller.
func Dir() (string, error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, nil
	}

	uid := os.Getuid()
	if dir := fmt.Sprintf("/run/user/%d", uid); isDir(dir) {
		return dir, nil
	}

	dir := filepath.Join(os.TempDir(), fmt.Sprintf("framewm-runtime-%d", uid))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create runtime dir: %w", err)
	}
	if err := checkPrivate(dir, uid); err != nil {
		return "", err
	}
	return dir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// checkPrivate rejects a shared-temp directory another user could have
// planted.
func checkPrivate(dir string, uid int) error {
	info, err := os.Lstat(dir)
	if err != nil {
		return fmt.Errorf("stat runtime dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("runtime dir %s is not a directory", dir)
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok && int(st.Uid) != uid {
		return fmt.Errorf("runtime dir %s is owned by uid %d", dir, st.Uid)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return fmt.Errorf("runtime dir %s is accessible by other users (%v)", dir, info.Mode().Perm())
	}
	return nil
}

// SocketPath returns the control socket path. A non-empty configured path
// wins; a leading "~/" is expanded.
func SocketPath(configured string) (string, error) {
	if configured != "" {
		return expandHome(configured)
	}
	return inDir(socketName)
}

// LogPath returns the default log file used when the terminal is taken.
func LogPath() (string, error) {
	return inDir(logName)
}

func inDir(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
