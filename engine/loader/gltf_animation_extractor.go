package loader

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
	paths  []animation.EntityPath
}

// gltfAnimationExtractor defines the interface for extracting animation clips from a parsed glTF document.
//
// Channels target glTF nodes by index. The extractor turns each node index into the entity path from
// the top of the node forest down to that node, so a clip built from the file addresses the object
// tree a scene spawner creates for it: the spawned scene object is the animation root and each
// top-level node is one of its children.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//
	// Returns:
	//   - animation.AnimationClip: the extracted clip
	//   - error: error if extraction fails or the clip is malformed
	ExtractAnimation(animIndex int) (animation.AnimationClip, error)

	// ExtractAllAnimations extracts every animation from the document.
	//
	// Returns:
	//   - []animation.AnimationClip: all extracted clips in document order
	//   - error: error if extraction fails
	ExtractAllAnimations() ([]animation.AnimationClip, error)

	// NodePath returns the entity path of a node.
	//
	// Parameters:
	//   - nodeIndex: the glTF node index
	//
	// Returns:
	//   - animation.EntityPath: the path from the top of the node forest, inclusive
	//   - bool: false if the index is out of range
	NodePath(nodeIndex int) (animation.EntityPath, bool)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfAnimationExtractor: the animation extractor
//   - error: error if the node graph is not a forest
func newGLTFAnimationExtractor(parser gltfParser) (gltfAnimationExtractor, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	paths, err := gltfNodePaths(doc)
	if err != nil {
		return nil, err
	}
	return &gltfAnimationExtractorImpl{parser: parser, paths: paths}, nil
}

func (e *gltfAnimationExtractorImpl) NodePath(nodeIndex int) (animation.EntityPath, bool) {
	if nodeIndex < 0 || nodeIndex >= len(e.paths) {
		return animation.EntityPath{}, false
	}
	return e.paths[nodeIndex], true
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int) (animation.AnimationClip, error) {
	doc := e.parser.Document()
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", animIndex)
	}

	anim := &doc.Animations[animIndex]
	name := common.Coalesce(anim.Name, fmt.Sprintf("animation_%d", animIndex))
	clip := animation.NewAnimationClip(animation.WithClipName(name))

	for i := range anim.Channels {
		ch := &anim.Channels[i]

		if ch.Target.Node == nil {
			continue
		}
		if ch.Target.Path == gltfAnimPathWeights {
			log.Printf("[Loader] animation %q channel %d: morph target weights are not supported, skipping", name, i)
			continue
		}

		path, ok := e.NodePath(*ch.Target.Node)
		if !ok {
			return nil, fmt.Errorf("animation %q channel %d: node index %d out of range", name, i, *ch.Target.Node)
		}

		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		timestamps, err := e.parser.ReadScalarAccessor(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read timestamps: %w", name, i, err)
		}

		interp, cubic, err := gltfInterpolation(sampler.Interpolation)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: %w", name, i, err)
		}

		var keyframes animation.Keyframes
		switch ch.Target.Path {
		case gltfAnimPathTranslation:
			values, err := e.parser.ReadVec3Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read translation values: %w", name, i, err)
			}
			keyframes = animation.TranslationKeyframes(splineValues(values, cubic))

		case gltfAnimPathRotation:
			values, err := e.parser.ReadVec4Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read rotation values: %w", name, i, err)
			}
			values = splineValues(values, cubic)
			for j := range values {
				values[j] = common.QuatNormalize(values[j])
			}
			keyframes = animation.RotationKeyframes(values)

		case gltfAnimPathScale:
			values, err := e.parser.ReadVec3Accessor(sampler.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %q channel %d: failed to read scale values: %w", name, i, err)
			}
			keyframes = animation.ScaleKeyframes(splineValues(values, cubic))

		default:
			log.Printf("[Loader] animation %q channel %d: unknown target path %q, skipping", name, i, ch.Target.Path)
			continue
		}

		curve := animation.VariableCurve{
			KeyframeTimestamps: timestamps,
			Keyframes:          keyframes,
			Interpolation:      interp,
		}
		if err := clip.AddCurveToPath(path, curve); err != nil {
			return nil, fmt.Errorf("animation %q channel %d: %w", name, i, err)
		}
	}

	return clip, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations() ([]animation.AnimationClip, error) {
	doc := e.parser.Document()
	clips := make([]animation.AnimationClip, len(doc.Animations))
	for i := range doc.Animations {
		clip, err := e.ExtractAnimation(i)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips[i] = clip
	}
	return clips, nil
}

// gltfInterpolation maps a sampler interpolation mode onto a curve Interpolation. Cubic
// spline samplers are sampled linearly through their keyframe values; the tangents are
// dropped by splineValues.
func gltfInterpolation(mode string) (animation.Interpolation, bool, error) {
	switch mode {
	case "", gltfAnimInterpolationLinear:
		return animation.InterpolationLinear, false, nil
	case gltfAnimInterpolationStep:
		return animation.InterpolationStep, false, nil
	case gltfAnimInterpolationCubicSpline:
		return animation.InterpolationLinear, true, nil
	default:
		return "", false, fmt.Errorf("unknown sampler interpolation %q", mode)
	}
}

// splineValues keeps the value element of each (in-tangent, value, out-tangent) triple
// when cubic is set.
func splineValues[T any](values []T, cubic bool) []T {
	if !cubic {
		return values
	}
	out := make([]T, 0, len(values)/3)
	for i := 1; i < len(values); i += 3 {
		out = append(out, values[i])
	}
	return out
}

// gltfNodePaths computes the entity path of every node. Unnamed nodes are called
// "node_<index>". A node listed as a child of two parents, or a cycle, is an error.
func gltfNodePaths(doc *gltfDocument) ([]animation.EntityPath, error) {
	parent := make([]int, len(doc.Nodes))
	for i := range parent {
		parent[i] = -1
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < 0 || c >= len(doc.Nodes) {
				return nil, fmt.Errorf("node %d: child index %d out of range", i, c)
			}
			if parent[c] >= 0 {
				return nil, fmt.Errorf("node %d has more than one parent", c)
			}
			parent[c] = i
		}
	}

	names := make([]string, len(doc.Nodes))
	for i, n := range doc.Nodes {
		names[i] = common.Coalesce(n.Name, fmt.Sprintf("node_%d", i))
	}

	paths := make([]animation.EntityPath, len(doc.Nodes))
	for i := range doc.Nodes {
		var chain []string
		for n, steps := i, 0; n >= 0; n, steps = parent[n], steps+1 {
			if steps > len(doc.Nodes) {
				return nil, fmt.Errorf("node %d is part of a cycle", i)
			}
			chain = append(chain, names[n])
		}
		for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
			chain[l], chain[r] = chain[r], chain[l]
		}
		paths[i] = animation.NewEntityPath(chain...)
	}
	return paths, nil
}
