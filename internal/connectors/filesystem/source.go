package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/logger"
	"github.com/custodia-labs/caselex/internal/normalisers/legal"
)

// Ensure Source implements the interface.
var _ driven.CaseSource = (*Source)(nil)

// DefaultExtensions are used when none are configured.
var DefaultExtensions = []string{".md", ".txt"}

var log = logger.For("filesystem")

// Source reads case files from a set of root paths.
type Source struct {
	roots      []string
	extensions []string

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
}

// New creates a source over roots. Extensions are matched case-insensitively
// and may be given with or without the leading dot.
func New(roots []string, extensions []string) *Source {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	s := &Source{}
	for _, r := range roots {
		s.roots = append(s.roots, ResolvePath(r))
	}
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		s.extensions = append(s.extensions, e)
	}
	return s
}

// Roots returns the resolved root paths.
func (s *Source) Roots() []string {
	return slices.Clone(s.roots)
}

// Collect reads every matching file under the roots, in lexical order per
// root.
func (s *Source) Collect(ctx context.Context) ([]domain.RawDocument, error) {
	var out []domain.RawDocument
	for _, root := range s.roots {
		files, err := s.files(root)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			docs, err := s.Read(ctx, path)
			if err != nil {
				return nil, err
			}
			out = append(out, docs...)
		}
	}
	log.Debug("collected %d documents from %d roots", len(out), len(s.roots))
	return out, nil
}

// Read loads one file. A bundle file yields one document per case; an
// empty file yields a single empty document, which the normaliser rejects.
func (s *Source) Read(_ context.Context, path string) ([]domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	segments := legal.SplitBundle(string(content))
	if len(segments) <= 1 {
		return []domain.RawDocument{{SourceID: path, Content: content}}, nil
	}
	out := make([]domain.RawDocument, len(segments))
	for i, seg := range segments {
		out[i] = domain.RawDocument{SourceID: fmt.Sprintf("%s#%d", path, i+1), Content: []byte(seg)}
	}
	log.Debug("%s: bundle of %d cases", path, len(segments))
	return out, nil
}

// Watch reports created, updated and deleted case files under every root
// until ctx is cancelled, then closes the channel.
func (s *Source) Watch(ctx context.Context) (<-chan domain.SourceChange, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, root := range s.roots {
		if err := s.addRoot(watcher, root); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	s.mu.Lock()
	s.watchers = append(s.watchers, watcher)
	s.mu.Unlock()

	changes := make(chan domain.SourceChange, 16)
	go func() {
		defer close(changes)
		defer s.release(watcher)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change := s.handleFsEvent(watcher, event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("watch error: %v", err)
			}
		}
	}()
	return changes, nil
}

// Close stops every active watcher.
func (s *Source) Close() error {
	s.mu.Lock()
	watchers := s.watchers
	s.watchers = nil
	s.mu.Unlock()

	var errs []error
	for _, w := range watchers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}

func (s *Source) release(w *fsnotify.Watcher) {
	s.mu.Lock()
	idx := slices.Index(s.watchers, w)
	if idx >= 0 {
		s.watchers = slices.Delete(s.watchers, idx, idx+1)
	}
	s.mu.Unlock()
	if idx >= 0 {
		w.Close()
	}
}

// files lists the case files under root. A root that is a file is returned
// as is.
func (s *Source) files(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && s.hasExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// addRoot watches root and every non-hidden directory below it. A file root
// is watched through its parent directory.
func (s *Source) addRoot(w *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(root))
	}
	return s.addTree(w, root)
}

func (s *Source) addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent maps a raw notification to a change. Directories created
// under a watched tree are added to the watcher and produce no change;
// chmod-only events are ignored.
func (s *Source) handleFsEvent(w *fsnotify.Watcher, event fsnotify.Event) *domain.SourceChange {
	path := event.Name
	if isHidden(path) {
		return nil
	}

	switch {
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if !s.matches(path) {
			return nil
		}
		return &domain.SourceChange{Type: domain.ChangeDeleted, Path: path}

	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if w != nil {
				if err := s.addTree(w, path); err != nil {
					log.Warn("%v", err)
				}
			}
			return nil
		}
		if !s.matches(path) {
			return nil
		}
		return &domain.SourceChange{Type: domain.ChangeCreated, Path: path}

	case event.Op.Has(fsnotify.Write):
		if !s.matches(path) {
			return nil
		}
		return &domain.SourceChange{Type: domain.ChangeUpdated, Path: path}
	}
	return nil
}

// matches reports whether a watched path is a case file: a file root
// itself, or a file with a known extension inside a directory root.
func (s *Source) matches(path string) bool {
	for _, root := range s.roots {
		if path == root {
			return true
		}
		if strings.HasPrefix(path, root+string(filepath.Separator)) && s.hasExtension(path) {
			return true
		}
	}
	return false
}

func (s *Source) hasExtension(path string) bool {
	return slices.Contains(s.extensions, strings.ToLower(filepath.Ext(path)))
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
