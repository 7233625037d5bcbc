package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"resumatch/internal/errors"
)

// PromptWatcher reloads system prompt files when they change on disk
type PromptWatcher struct {
	mu sync.Mutex

	cfg           *Config
	files         map[string]string // absolute path -> operation
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	timers        map[string]*time.Timer
	onReload      func(operation string)
	logger        *errors.Logger

	stopChan chan struct{}
	done     chan struct{}
	running  bool
}

// NewPromptWatcher creates a watcher for the configured prompt files.
// onReload may be nil.
func NewPromptWatcher(cfg *Config, debounceDelay time.Duration, onReload func(operation string), logger *errors.Logger) *PromptWatcher {
	if debounceDelay == 0 {
		debounceDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = errors.Discard()
	}
	files := make(map[string]string)
	for op, path := range cfg.PromptFiles() {
		if abs, err := filepath.Abs(path); err == nil {
			files[abs] = op
		}
	}
	return &PromptWatcher{
		cfg:           cfg,
		files:         files,
		debounceDelay: debounceDelay,
		timers:        make(map[string]*time.Timer),
		onReload:      onReload,
		logger:        logger,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins watching. It is a no-op when no prompt files are configured.
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running || len(pw.files) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch directories so editors that replace files atomically are seen
	dirs := make(map[string]bool)
	for path := range pw.files {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	pw.fsWatcher = watcher
	pw.running = true
	go pw.watchLoop()

	pw.logger.Info("Prompt file watcher started", "files", len(pw.files), "debounce_delay", pw.debounceDelay)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	if !pw.running {
		pw.mu.Unlock()
		return nil
	}
	pw.running = false
	close(pw.stopChan)
	for _, t := range pw.timers {
		t.Stop()
	}
	err := pw.fsWatcher.Close()
	pw.mu.Unlock()

	<-pw.done
	pw.logger.Info("Prompt file watcher stopped")
	return err
}

func (pw *PromptWatcher) watchLoop() {
	defer close(pw.done)
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}
			if op, watched := pw.operationFor(event); watched {
				pw.scheduleReload(op)
			}
		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			pw.logger.LogError(err, "Prompt file watcher error")
		case <-pw.stopChan:
			return
		}
	}
}

func (pw *PromptWatcher) operationFor(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	op, ok := pw.files[abs]
	return op, ok
}

func (pw *PromptWatcher) scheduleReload(operation string) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return
	}
	if t, ok := pw.timers[operation]; ok {
		t.Stop()
	}
	pw.timers[operation] = time.AfterFunc(pw.debounceDelay, func() {
		if err := pw.cfg.ReloadSystemPrompt(operation); err != nil {
			pw.logger.LogError(err, "Failed to reload system prompt", "operation", operation)
			return
		}
		pw.logger.Info("System prompt reloaded", "operation", operation)
		if pw.onReload != nil {
			pw.onReload(operation)
		}
	})
}
