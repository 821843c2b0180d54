package proxy

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// aliveWait bounds probing a session socket.
const aliveWait = 500 * time.Millisecond

// Sessions returns the session directories under root, the directory
// sessions are created in (os.TempDir()).
func Sessions(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), SessionPrefix) {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs, nil
}

// SessionAlive reports whether a process still serves the session in dir.
// Directories of sessions that were killed before Close stay behind with a
// dead socket.
func SessionAlive(dir string) bool {
	c, err := net.DialTimeout("unix", filepath.Join(dir, socketName), aliveWait)
	if err != nil {
		return false
	}
	c.Close()
	return true
}
