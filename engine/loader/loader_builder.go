package loader

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithClip is an option builder that pre-populates the clip cache with a clip built in code.
// The clip is tracked under its own name as source, so Forget(clip.Name()) removes it.
//
// Parameters:
//   - clip: the clip to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the clip option to a loader
func WithClip(clip animation.AnimationClip) LoaderBuilderOption {
	return func(l *loader) {
		l.clipCache[clip.Name()] = clip
		l.sources[clip.Name()] = []string{clip.Name()}
	}
}

// WithConcurrency is an option builder that sets how many files LoadDir decodes at once.
// Values below 1 are ignored.
//
// Parameters:
//   - n: the maximum number of concurrent file loads
//
// Returns:
//   - LoaderBuilderOption: a function that applies the concurrency option to a loader
func WithConcurrency(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}
