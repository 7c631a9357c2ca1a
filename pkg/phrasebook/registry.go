package phrasebook

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/dutyrate/pkg/rate"
)

// Registry holds the phrasebooks of a directory and can follow changes to it.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	books    map[string]*Book
	dir      string
	logger   *zap.Logger
	onChange func(event string, book *Book)

	// watchMu guards the watch state. It is separate from mu because the
	// watch loop takes mu while StopWatch waits for the loop to exit.
	watchMu  sync.Mutex
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	done     chan struct{}
}

// NewRegistry creates an empty registry. A nil logger discards log output.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		books:  make(map[string]*Book),
		logger: logger,
	}
}

// NewRegistryWithDirectory creates a registry and loads every book in dir.
func NewRegistryWithDirectory(dir string, logger *zap.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	if err := r.LoadDirectory(dir); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds a book. A book with the same name replaces the existing one
// only if its version differs or it was read from the same file.
func (r *Registry) Register(book *Book) error {
	if book == nil {
		return fmt.Errorf("phrasebook cannot be nil")
	}
	book.normalize()
	if err := book.Validate(); err != nil {
		return fmt.Errorf("invalid phrasebook: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.books[book.Name]; ok && existing.Version == book.Version &&
		(existing.path == "" || existing.path != book.path) {
		return fmt.Errorf("phrasebook %q version %s already registered", book.Name, book.Version)
	}
	r.books[book.Name] = book
	return nil
}

// Unregister removes a book by name.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[name]; !ok {
		return fmt.Errorf("phrasebook %q not found", name)
	}
	delete(r.books, name)
	return nil
}

// Get returns a book by name.
func (r *Registry) Get(name string) (*Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[name]
	return book, ok
}

// List returns all books sorted by name.
func (r *Registry) List() []*Book {
	r.mu.RLock()
	defer r.mu.RUnlock()

	books := make([]*Book, 0, len(r.books))
	for _, b := range r.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Name < books[j].Name })
	return books
}

// Count returns the number of registered books.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books)
}

// Table returns the default phrase table extended with every registered
// phrase, books taken in name order.
func (r *Registry) Table() rate.PhraseTable {
	table := rate.DefaultPhraseTable()
	for _, book := range r.List() {
		table = table.With(book.Phrases...)
	}
	return table
}

// Parser returns a rate parser over Table.
func (r *Registry) Parser() *rate.Parser {
	return rate.NewParser(r.Table())
}

// LoadDirectory loads all YAML files in dir. A missing directory loads nothing.
func (r *Registry) LoadDirectory(dir string) error {
	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Debug("Phrasebook directory does not exist", zap.String("dir", dir))
			return nil
		}
		return fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var loadErrors []string
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := r.LoadFile(path); err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", entry.Name(), err))
		}
	}

	if len(loadErrors) > 0 {
		return fmt.Errorf("errors loading phrasebooks: %s", strings.Join(loadErrors, "; "))
	}
	return nil
}

// LoadFile loads a single YAML phrasebook.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	var book Book
	if err := yaml.Unmarshal(data, &book); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	book.path = path

	if err := r.Register(&book); err != nil {
		return fmt.Errorf("registering phrasebook: %w", err)
	}

	r.logger.Debug("Loaded phrasebook",
		zap.String("path", path),
		zap.String("name", book.Name),
		zap.Int("phrases", len(book.Phrases)))
	return nil
}

// Reload clears the registry and loads the configured directory again.
func (r *Registry) Reload() error {
	r.mu.Lock()
	dir := r.dir
	if dir == "" {
		r.mu.Unlock()
		return fmt.Errorf("no directory configured for reload")
	}
	r.books = make(map[string]*Book)
	r.mu.Unlock()

	return r.LoadDirectory(dir)
}

// SetOnChange sets a callback run after a watched file is loaded or removed.
// The book is nil for removals.
func (r *Registry) SetOnChange(fn func(event string, book *Book)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Watch starts following the configured directory for changes. It fails if
// the registry is already watching.
func (r *Registry) Watch() error {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	if r.watcher != nil {
		return fmt.Errorf("already watching phrasebook directory")
	}

	r.mu.RLock()
	dir := r.dir
	r.mu.RUnlock()
	if dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})
	r.done = make(chan struct{})
	go r.watchLoop(watcher, r.stopChan, r.done)

	r.logger.Info("Watching phrasebook directory", zap.String("dir", dir))
	return nil
}

func (r *Registry) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isYAML(event.Name) {
				continue
			}

			switch {
			case event.Op&fsnotify.Create == fsnotify.Create:
				r.handleFileChange(event.Name, "create")
			case event.Op&fsnotify.Write == fsnotify.Write:
				r.handleFileChange(event.Name, "modify")
			case event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				r.handleFileRemove(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("Phrasebook watcher error", zap.Error(err))
		}
	}
}

func (r *Registry) handleFileChange(path string, eventType string) {
	if err := r.LoadFile(path); err != nil {
		r.logger.Warn("Failed to load phrasebook",
			zap.String("path", path),
			zap.String("event", eventType),
			zap.Error(err))
		return
	}

	book, ok := r.bookByPath(path)
	if !ok {
		return
	}
	r.notify(eventType, book)
}

// handleFileRemove reloads the whole directory since the removed file's book
// name cannot be read back.
func (r *Registry) handleFileRemove(path string) {
	if err := r.Reload(); err != nil {
		r.logger.Warn("Failed to reload phrasebooks",
			zap.String("removed", path),
			zap.Error(err))
	}
	r.notify("remove", nil)
}

func (r *Registry) notify(event string, book *Book) {
	r.mu.RLock()
	fn := r.onChange
	r.mu.RUnlock()
	if fn != nil {
		fn(event, book)
	}
}

func (r *Registry) bookByPath(path string) (*Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.books {
		if b.path == path {
			return b, true
		}
	}
	return nil, false
}

// StopWatch stops following the directory and waits for the watch loop to exit.
func (r *Registry) StopWatch() {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()

	if r.stopChan != nil {
		close(r.stopChan)
		r.stopChan = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
	if r.done != nil {
		<-r.done
		r.done = nil
	}
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
