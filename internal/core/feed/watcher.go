package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const debounceDelay = 50 * time.Millisecond

// FileWatcher is a WakeSource that fires when files with a given prefix in a
// directory change. It is used to wake pollers as soon as another process
// writes to the database (the main file or its WAL/SHM siblings).
type FileWatcher struct {
	dir    string
	prefix string
	logger zerolog.Logger

	watcher *fsnotify.Watcher
	signal  *Signal

	mu    sync.Mutex
	timer *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ WakeSource = (*FileWatcher)(nil)

// NewFileWatcher watches dir for changes to files whose base name starts
// with prefix. The directory is created if it doesn't exist.
func NewFileWatcher(dir, prefix string, logger zerolog.Logger) (*FileWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		dir:     dir,
		prefix:  prefix,
		logger:  logger,
		watcher: watcher,
		signal:  NewSignal(),
		ctx:     ctx,
		cancel:  cancel,
	}

	fw.wg.Add(1)
	go fw.run()

	return fw, nil
}

// Subscribe implements WakeSource.
func (fw *FileWatcher) Subscribe() (<-chan struct{}, func()) {
	return fw.signal.Subscribe()
}

// Close stops watching.
func (fw *FileWatcher) Close() error {
	fw.cancel()

	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn().Err(err).Str("dir", fw.dir).Msg("file watcher error")
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	if !strings.HasPrefix(filepath.Base(event.Name), fw.prefix) {
		return
	}

	// Writes arrive in bursts (main file, WAL, SHM); fire once per burst.
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(debounceDelay, fw.signal.Fire)
	fw.mu.Unlock()
}
