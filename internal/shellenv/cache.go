package shellenv

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raphi011/hookproxy/internal/log"
)

// DefaultCacheTTL bounds how long a cached environment is reused.
const DefaultCacheTTL = 10 * time.Minute

// rcFiles are the profile files whose change invalidates cached environments.
var rcFiles = map[string]bool{
	".profile":      true,
	".bash_profile": true,
	".bash_login":   true,
	".bashrc":       true,
	".zshenv":       true,
	".zprofile":     true,
	".zshrc":        true,
	".zlogin":       true,
	".envrc":        true,
	"config.fish":   true,
	"profile.ps1":   true,

	"Microsoft.PowerShell_profile.ps1": true,
}

type cacheKey struct {
	kind Kind
	cwd  string
}

type cacheEntry struct {
	env     Env
	created time.Time
}

// Cache keeps loaded environments per shell kind and working directory.
// It is safe for concurrent use.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[cacheKey]cacheEntry

	watcher *fsnotify.Watcher
	stop    chan struct{}
	once    sync.Once
}

// NewCache returns a cache whose entries expire after ttl. A non-positive
// ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[cacheKey]cacheEntry),
		stop:    make(chan struct{}),
	}
}

// Get returns a copy of the cached environment, if present and fresh.
func (c *Cache) Get(kind Kind, cwd string) (Env, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[cacheKey{kind, cwd}]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.created) > c.ttl {
		delete(c.entries, cacheKey{kind, cwd})
		return nil, false
	}
	return maps.Clone(e.env), true
}

// Put stores a copy of env.
func (c *Cache) Put(kind Kind, cwd string, env Env) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{kind, cwd}] = cacheEntry{env: maps.Clone(env), created: c.now()}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// RCDirs returns the directories under home that hold shell profiles.
func RCDirs(home string) []string {
	return []string{
		home,
		filepath.Join(home, ".config", "fish"),
		filepath.Join(home, ".config", "powershell"),
		filepath.Join(home, "Documents", "PowerShell"),
	}
}

// Watch clears the cache whenever a shell profile in one of dirs changes.
// Directories that do not exist are skipped. Watching stops on Close or
// when ctx is done.
func (c *Cache) Watch(ctx context.Context, dirs ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return err
		}
	}
	c.watcher = watcher

	l := log.FromContext(ctx)
	go func() {
		for {
			select {
			case <-c.stop:
				return
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if rcFiles[filepath.Base(event.Name)] {
					l.Debug("shell profile changed, dropping cached environments", "file", event.Name)
					c.Clear()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.Debug("shell profile watcher error", "err", err)
			}
		}
	}()
	return nil
}

// Close stops watching.
func (c *Cache) Close() error {
	var err error
	c.once.Do(func() {
		close(c.stop)
		if c.watcher != nil {
			err = c.watcher.Close()
		}
	})
	return err
}
