package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// Each call parses the document with a fresh gltfParser and hands it to the animation extractor.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) ([]animation.AnimationClip, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, err
	}
	return b.extract(parser)
}

func (b *gltfLoaderBackendImpl) LoadReader(source string, r io.Reader, format Format) ([]animation.AnimationClip, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, format == FormatGLB); err != nil {
		return nil, err
	}
	return b.extract(parser)
}

func (b *gltfLoaderBackendImpl) extract(parser gltfParser) ([]animation.AnimationClip, error) {
	extractor, err := newGLTFAnimationExtractor(parser)
	if err != nil {
		return nil, err
	}
	return extractor.ExtractAllAnimations()
}
