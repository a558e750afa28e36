package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"

	"golang.org/x/sync/errgroup"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported clip format")
	ErrMalformedCurve    = errors.New("malformed curve")
)

// Format identifies the encoding of a clip source.
type Format int

const (
	// FormatYAML is the hand-authored YAML clip format.
	FormatYAML Format = iota
	// FormatGLTF is a glTF JSON document.
	FormatGLTF
	// FormatGLB is a binary glTF container.
	FormatGLB
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatGLTF:
		return "gltf"
	case FormatGLB:
		return "glb"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatForPath picks a Format from a file extension.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Format: the detected format
//   - error: ErrUnsupportedFormat if the extension is not recognized
func FormatForPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".gltf":
		return FormatGLTF, nil
	case ".glb":
		return FormatGLB, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// sourceName is the file name without directory or extension. It names clips that
// carry no name of their own.
func sourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	clipCache map[string]animation.AnimationClip
	sources   map[string][]string

	concurrency int

	yaml loaderBackend
	gltf loaderBackend
}

// Loader defines the public-facing interface for loading and caching animation clips.
// It abstracts the file format (YAML, glTF, GLB) behind a backend per format and keeps
// every loaded clip in a cache keyed by clip name. Each file or stream a clip came from
// is remembered as its source so the file can be reloaded or forgotten as a unit.
type Loader interface {
	// Load decodes every clip in a file and caches the result.
	// If the file was loaded before, the cached clips are returned without reading it again.
	// The backend is selected based on the file extension (.yaml/.yml, .gltf, .glb).
	//
	// Parameters:
	//   - path: the file path to the clip file
	//
	// Returns:
	//   - []animation.AnimationClip: the clips in file order
	//   - error: error if the format is unsupported or decoding fails
	Load(path string) ([]animation.AnimationClip, error)

	// Reload decodes a file again and replaces every clip previously loaded from it.
	// Clip names that no longer appear in the file are dropped from the cache.
	// Players already holding an old clip keep it; swap clips with Play to pick up the new one.
	//
	// Parameters:
	//   - path: the file path to the clip file
	//
	// Returns:
	//   - []animation.AnimationClip: the fresh clips in file order
	//   - error: error if decoding fails; the cache is left untouched in that case
	Reload(path string) ([]animation.AnimationClip, error)

	// LoadReader decodes clips from a reader stream and caches them under the given source name.
	//
	// Parameters:
	//   - name: the source name, also the fallback name for unnamed clips
	//   - r: the reader providing clip data
	//   - format: the encoding of the stream
	//
	// Returns:
	//   - []animation.AnimationClip: the clips in stream order
	//   - error: error if decoding fails
	LoadReader(name string, r io.Reader, format Format) ([]animation.AnimationClip, error)

	// LoadDir loads every supported file directly inside dir, in parallel.
	// The first failure cancels the remaining loads.
	//
	// Parameters:
	//   - ctx: cancels the remaining loads
	//   - dir: the directory to scan (not recursive)
	//
	// Returns:
	//   - []animation.AnimationClip: every clip, grouped by file in directory order
	//   - error: the first load error
	LoadDir(ctx context.Context, dir string) ([]animation.AnimationClip, error)

	// Forget drops every clip loaded from a source.
	//
	// Parameters:
	//   - source: the file path or stream name the clips were loaded from
	//
	// Returns:
	//   - []string: the names of the dropped clips
	Forget(source string) []string

	// Get retrieves a cached clip by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the clip name to look up
	//
	// Returns:
	//   - animation.AnimationClip: the cached clip or nil
	Get(name string) animation.AnimationClip

	// Clips returns a copy of the clip cache.
	//
	// Returns:
	//   - map[string]animation.AnimationClip: all cached clips keyed by name
	Clips() map[string]animation.AnimationClip
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the YAML and glTF backends and the provided options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:          sync.RWMutex{},
		clipCache:   make(map[string]animation.AnimationClip),
		sources:     make(map[string][]string),
		concurrency: 4,
		yaml:        newYAMLLoaderBackend(),
		gltf:        newGLTFLoaderBackend(),
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) ([]animation.AnimationClip, error) {
	if cached, ok := l.cached(path); ok {
		return cached, nil
	}
	return l.Reload(path)
}

func (l *loader) Reload(path string) ([]animation.AnimationClip, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	clips, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.store(path, clips)
	return clips, nil
}

func (l *loader) LoadReader(name string, r io.Reader, format Format) ([]animation.AnimationClip, error) {
	if cached, ok := l.cached(name); ok {
		return cached, nil
	}

	backend, err := l.backendFor(format)
	if err != nil {
		return nil, err
	}

	clips, err := backend.LoadReader(name, r, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.store(name, clips)
	return clips, nil
}

func (l *loader) LoadDir(ctx context.Context, dir string) ([]animation.AnimationClip, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatForPath(e.Name()); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	results := make([][]animation.AnimationClip, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			clips, err := l.Load(path)
			if err != nil {
				return err
			}
			results[i] = clips
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []animation.AnimationClip
	for _, clips := range results {
		all = append(all, clips...)
	}
	log.Printf("[Loader] loaded %d clips from %d files in %s", len(all), len(paths), dir)
	return all, nil
}

func (l *loader) Forget(source string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := l.sources[source]
	delete(l.sources, source)
	for _, name := range names {
		delete(l.clipCache, name)
	}
	return names
}

func (l *loader) Get(name string) animation.AnimationClip {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.clipCache[name]
}

func (l *loader) Clips() map[string]animation.AnimationClip {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.clipCache)
}

// cached returns the clips previously stored for a source, in source order.
func (l *loader) cached(source string) ([]animation.AnimationClip, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names, ok := l.sources[source]
	if !ok {
		return nil, false
	}
	clips := make([]animation.AnimationClip, 0, len(names))
	for _, name := range names {
		if c, ok := l.clipCache[name]; ok {
			clips = append(clips, c)
		}
	}
	return clips, true
}

// store replaces the clips of a source. A clip whose name is already owned by another
// source takes the name over; the other source stops tracking it.
func (l *loader) store(source string, clips []animation.AnimationClip) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, name := range l.sources[source] {
		delete(l.clipCache, name)
	}

	names := make([]string, 0, len(clips))
	for _, c := range clips {
		name := c.Name()
		for other, owned := range l.sources {
			if other == source {
				continue
			}
			if i := slices.Index(owned, name); i >= 0 {
				log.Printf("[Loader] clip %q from %s replaces the one from %s", name, source, other)
				l.sources[other] = slices.Delete(owned, i, i+1)
			}
		}
		l.clipCache[name] = c
		names = append(names, name)
	}
	l.sources[source] = names
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return l.backendFor(format)
}

func (l *loader) backendFor(format Format) (loaderBackend, error) {
	switch format {
	case FormatYAML:
		return l.yaml, nil
	case FormatGLTF, FormatGLB:
		return l.gltf, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
