package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"

	"gopkg.in/yaml.v3"
)

// clipFile is the root of a YAML clip document:
//
//	clips:
//	  - name: orbit
//	    curves:
//	      - path: planet
//	        kind: translation
//	        interpolation: linear
//	        timestamps: [0, 1, 2]
//	        values: [[0, 0, 0], [1, 0, 0], [2, 0, 0]]
//	      - path: planet/orbit_controller
//	        kind: rotation
//	        degrees: true
//	        timestamps: [0, 2, 4]
//	        axis_angles: [[0, 1, 0, 0], [0, 1, 0, 180], [0, 1, 0, 360]]
type clipFile struct {
	Clips []clipSpec `yaml:"clips"`
}

type clipSpec struct {
	Name   string      `yaml:"name"`
	Curves []curveSpec `yaml:"curves"`
}

// curveSpec is one curve. Translation and scale values are [x, y, z]; rotation values
// are quaternions [x, y, z, w], or axis_angles entries [ax, ay, az, angle] with the
// angle in radians unless degrees is set.
type curveSpec struct {
	Path          string      `yaml:"path"`
	Kind          string      `yaml:"kind"`
	Interpolation string      `yaml:"interpolation"`
	Timestamps    []float32   `yaml:"timestamps"`
	Values        [][]float32 `yaml:"values"`
	AxisAngles    [][]float32 `yaml:"axis_angles"`
	Degrees       bool        `yaml:"degrees"`
}

// yamlLoaderBackendImpl is the implementation of yamlLoaderBackend.
type yamlLoaderBackendImpl struct{}

// yamlLoaderBackend is a loaderBackend implementation for hand-authored YAML clip files.
// Unknown keys are rejected so typos surface as load errors.
type yamlLoaderBackend interface {
	loaderBackend
}

var _ yamlLoaderBackend = &yamlLoaderBackendImpl{}

// newYAMLLoaderBackend creates a new YAML loader backend.
//
// Returns:
//   - yamlLoaderBackend: the loader backend for YAML clip files
func newYAMLLoaderBackend() yamlLoaderBackend {
	return &yamlLoaderBackendImpl{}
}

func (b *yamlLoaderBackendImpl) Load(path string) ([]animation.AnimationClip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return b.LoadReader(sourceName(path), bytes.NewReader(data), FormatYAML)
}

func (b *yamlLoaderBackendImpl) LoadReader(source string, r io.Reader, _ Format) ([]animation.AnimationClip, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file clipFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse clip YAML: %w", err)
	}

	clips := make([]animation.AnimationClip, 0, len(file.Clips))
	for i, spec := range file.Clips {
		fallback := source
		if len(file.Clips) > 1 {
			fallback = fmt.Sprintf("%s_%d", source, i)
		}
		clip, err := buildClip(common.Coalesce(spec.Name, fallback), spec)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}
	return clips, nil
}

// buildClip converts one clipSpec. The first rejected curve fails the whole clip.
func buildClip(name string, spec clipSpec) (animation.AnimationClip, error) {
	clip := animation.NewAnimationClip(animation.WithClipName(name))
	for i, cs := range spec.Curves {
		curve, err := cs.curve()
		if err != nil {
			return nil, fmt.Errorf("clip %q curve %d (%s): %w", name, i, cs.Path, err)
		}
		if err := clip.AddCurveToPath(animation.ParseEntityPath(cs.Path), curve); err != nil {
			return nil, fmt.Errorf("clip %q curve %d: %w", name, i, err)
		}
	}
	return clip, nil
}

func (cs curveSpec) curve() (animation.VariableCurve, error) {
	kind, ok := animation.ParseKeyframeKind(cs.Kind)
	if !ok {
		return animation.VariableCurve{}, fmt.Errorf("%w: kind %q", ErrMalformedCurve, cs.Kind)
	}
	if len(cs.Values) > 0 && len(cs.AxisAngles) > 0 {
		return animation.VariableCurve{}, fmt.Errorf("%w: both values and axis_angles are set", ErrMalformedCurve)
	}

	var keyframes animation.Keyframes
	switch kind {
	case animation.KindTranslation:
		v, err := vec3s(cs.Values)
		if err != nil {
			return animation.VariableCurve{}, err
		}
		keyframes = animation.TranslationKeyframes(v)
	case animation.KindScale:
		v, err := vec3s(cs.Values)
		if err != nil {
			return animation.VariableCurve{}, err
		}
		keyframes = animation.ScaleKeyframes(v)
	case animation.KindRotation:
		if len(cs.AxisAngles) > 0 {
			aa, err := vec4s(cs.AxisAngles)
			if err != nil {
				return animation.VariableCurve{}, err
			}
			q := make([][4]float32, len(aa))
			for i, a := range aa {
				angle := a[3]
				if cs.Degrees {
					angle *= math.Pi / 180
				}
				q[i] = common.QuatFromAxisAngle([3]float32{a[0], a[1], a[2]}, angle)
			}
			keyframes = animation.RotationKeyframes(q)
			break
		}
		v, err := vec4s(cs.Values)
		if err != nil {
			return animation.VariableCurve{}, err
		}
		keyframes = animation.RotationKeyframes(v)
	}

	return animation.VariableCurve{
		KeyframeTimestamps: cs.Timestamps,
		Keyframes:          keyframes,
		Interpolation:      animation.Interpolation(cs.Interpolation),
	}, nil
}

func vec3s(rows [][]float32) ([][3]float32, error) {
	out := make([][3]float32, len(rows))
	for i, row := range rows {
		if err := checkWidth(i, row, 3); err != nil {
			return nil, err
		}
		copy(out[i][:], row)
	}
	return out, nil
}

func vec4s(rows [][]float32) ([][4]float32, error) {
	out := make([][4]float32, len(rows))
	for i, row := range rows {
		if err := checkWidth(i, row, 4); err != nil {
			return nil, err
		}
		copy(out[i][:], row)
	}
	return out, nil
}

func checkWidth(i int, row []float32, want int) error {
	if len(row) != want {
		return fmt.Errorf("%w: value %d has %d components, want %d", ErrMalformedCurve, i, len(row), want)
	}
	return nil
}
