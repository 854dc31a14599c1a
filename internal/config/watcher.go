package config

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aeroshieldgt/enviro-api/internal/alerts"
)

// ThresholdStore holds the live alert thresholds and reloads them when
// the config file changes, so threshold tuning does not need a restart.
// The pipeline reads Current once per cycle; a reload therefore always
// lands on a cycle boundary.
type ThresholdStore struct {
	path string

	mu      sync.RWMutex
	current alerts.Thresholds
	mtime   time.Time
}

func NewThresholdStore(path string, initial alerts.Thresholds) *ThresholdStore {
	s := &ThresholdStore{path: path, current: initial}
	if fi, err := os.Stat(path); err == nil {
		s.mtime = fi.ModTime()
	}
	return s
}

func (s *ThresholdStore) Current() alerts.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *ThresholdStore) reload() {
	cfg, err := Load(s.path)
	if err != nil {
		log.Printf("config: threshold reload failed, keeping current values: %v", err)
		return
	}
	s.mu.Lock()
	s.current = cfg.Thresholds
	s.mu.Unlock()
	log.Printf("config: thresholds reloaded from %s", s.path)
}

func (s *ThresholdStore) reloadIfChanged() {
	fi, err := os.Stat(s.path)
	if err != nil {
		return
	}
	s.mu.RLock()
	changed := fi.ModTime().After(s.mtime)
	s.mu.RUnlock()
	if !changed {
		return
	}
	s.mu.Lock()
	s.mtime = fi.ModTime()
	s.mu.Unlock()
	s.reload()
}

// StartWatcher monitors the config file with fsnotify, with a slow
// polling loop as safety net for filesystems where fsnotify is
// unreliable (network mounts, some container overlays).
func (s *ThresholdStore) StartWatcher(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	usePolling := false

	if err != nil {
		log.Printf("config: fsnotify failed (%v), falling back to polling", err)
		usePolling = true
	} else if err := watcher.Add(s.path); err != nil {
		log.Printf("config: failed to watch %s (%v), falling back to polling", s.path, err)
		usePolling = true
		watcher.Close()
	}

	if !usePolling {
		go func() {
			defer watcher.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
						// Editors often write in two ops; let the file settle.
						time.Sleep(100 * time.Millisecond)
						s.reload()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Printf("config: watcher error: %v", err)
				}
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reloadIfChanged()
			}
		}
	}()
}
