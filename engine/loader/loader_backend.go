package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// loaderBackend defines the generic interface for decoding animation clips from files or streams.
// Concrete implementations (gltfLoaderBackend, yamlLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load decodes every clip in the file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - []animation.AnimationClip: the decoded clips in file order
	//   - error: error if reading or decoding fails
	Load(path string) ([]animation.AnimationClip, error)

	// LoadReader decodes every clip from a reader stream.
	//
	// Parameters:
	//   - source: a name for the stream, used as the fallback clip name
	//   - r: the reader providing clip data
	//   - format: the encoding of the stream
	//
	// Returns:
	//   - []animation.AnimationClip: the decoded clips in stream order
	//   - error: error if reading or decoding fails
	LoadReader(source string, r io.Reader, format Format) ([]animation.AnimationClip, error)
}
