package config

import (
	"context"
	"os"
	"time"
)

type fileStamp struct {
	exists  bool
	modTime time.Time
	size    int64
}

// FileWatcher polls settings files and triggers a callback on change.
// Creating, editing and deleting a watched file all count as changes.
type FileWatcher struct {
	paths    []string
	interval time.Duration
	onChange func(path string)
	last     map[string]fileStamp
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &FileWatcher{
		paths:    append([]string(nil), paths...),
		interval: interval,
		onChange: onChange,
		last:     make(map[string]fileStamp),
	}
}

// Run primes the watcher with the current file states, then polls until
// ctx is done.
func (w *FileWatcher) Run(ctx context.Context) {
	w.scan(true)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.scan(false)
		case <-ctx.Done():
			return
		}
	}
}

// scan compares each path against its previous stamp and reports
// differences unless priming.
func (w *FileWatcher) scan(prime bool) {
	for _, p := range w.paths {
		cur := stat(p)
		prev, seen := w.last[p]
		w.last[p] = cur
		if prime || !seen {
			continue
		}
		if !cur.equal(prev) && w.onChange != nil {
			w.onChange(p)
		}
	}
}

func (a fileStamp) equal(b fileStamp) bool {
	return a.exists == b.exists && a.size == b.size && a.modTime.Equal(b.modTime)
}

func stat(path string) fileStamp {
	fi, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, modTime: fi.ModTime(), size: fi.Size()}
}
