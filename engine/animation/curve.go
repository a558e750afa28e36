package animation

import (
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

// unitTolerance is how far a rotation keyframe's length may stray from 1.
const unitTolerance = 1e-3

// KeyframeKind names the transform property a curve drives.
type KeyframeKind int

const (
	KindTranslation KeyframeKind = iota
	KindRotation
	KindScale
)

func (k KeyframeKind) String() string {
	switch k {
	case KindTranslation:
		return "translation"
	case KindRotation:
		return "rotation"
	case KindScale:
		return "scale"
	}
	return fmt.Sprintf("KeyframeKind(%d)", int(k))
}

// ParseKeyframeKind maps "translation", "rotation" or "scale" to a KeyframeKind.
func ParseKeyframeKind(s string) (KeyframeKind, bool) {
	switch s {
	case "translation":
		return KindTranslation, true
	case "rotation":
		return KindRotation, true
	case "scale":
		return KindScale, true
	}
	return 0, false
}

// Keyframes is the value sequence of a VariableCurve. It is implemented only by
// TranslationKeyframes, RotationKeyframes and ScaleKeyframes.
type Keyframes interface {
	// Kind returns the property these keyframes drive.
	Kind() KeyframeKind

	// Len returns the number of keyframe values.
	Len() int

	value(i int) Value
	sample(i, j int, f float32) Value
	clone() Keyframes
	validate() error
}

// TranslationKeyframes holds one translation vector per timestamp.
type TranslationKeyframes [][3]float32

// RotationKeyframes holds one unit quaternion (x, y, z, w) per timestamp.
type RotationKeyframes [][4]float32

// ScaleKeyframes holds one scale vector per timestamp.
type ScaleKeyframes [][3]float32

var (
	_ Keyframes = TranslationKeyframes(nil)
	_ Keyframes = RotationKeyframes(nil)
	_ Keyframes = ScaleKeyframes(nil)
)

func (k TranslationKeyframes) Kind() KeyframeKind { return KindTranslation }
func (k TranslationKeyframes) Len() int           { return len(k) }
func (k TranslationKeyframes) value(i int) Value {
	return Value{Kind: KindTranslation, Translation: k[i]}
}
func (k TranslationKeyframes) sample(i, j int, f float32) Value {
	if f <= 0 {
		return k.value(i)
	}
	return Value{Kind: KindTranslation, Translation: common.Lerp3(k[i], k[j], f)}
}
func (k TranslationKeyframes) clone() Keyframes { return append(TranslationKeyframes(nil), k...) }
func (k TranslationKeyframes) validate() error  { return validateVectors(k) }

func (k RotationKeyframes) Kind() KeyframeKind { return KindRotation }
func (k RotationKeyframes) Len() int           { return len(k) }
func (k RotationKeyframes) value(i int) Value {
	return Value{Kind: KindRotation, Rotation: k[i]}
}
func (k RotationKeyframes) sample(i, j int, f float32) Value {
	if f <= 0 {
		return k.value(i)
	}
	return Value{Kind: KindRotation, Rotation: common.QuatSlerp(k[i], k[j], f)}
}
func (k RotationKeyframes) clone() Keyframes { return append(RotationKeyframes(nil), k...) }
func (k RotationKeyframes) validate() error {
	for i, q := range k {
		l := float64(common.QuatLength(q))
		if math.IsNaN(l) || math.Abs(l-1) > unitTolerance {
			return fmt.Errorf("keyframe %d has length %g: %w", i, l, ErrNonUnitRotation)
		}
	}
	return nil
}

func (k ScaleKeyframes) Kind() KeyframeKind { return KindScale }
func (k ScaleKeyframes) Len() int           { return len(k) }
func (k ScaleKeyframes) value(i int) Value {
	return Value{Kind: KindScale, Scale: k[i]}
}
func (k ScaleKeyframes) sample(i, j int, f float32) Value {
	if f <= 0 {
		return k.value(i)
	}
	return Value{Kind: KindScale, Scale: common.Lerp3(k[i], k[j], f)}
}
func (k ScaleKeyframes) clone() Keyframes { return append(ScaleKeyframes(nil), k...) }
func (k ScaleKeyframes) validate() error  { return validateVectors(k) }

func validateVectors[T ~[][3]float32](values T) error {
	for i, v := range values {
		for _, c := range v {
			if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
				return fmt.Errorf("keyframe %d = %v: %w", i, v, ErrNonFiniteValue)
			}
		}
	}
	return nil
}

// Value is one sampled curve output. Only the field matching Kind is meaningful.
type Value struct {
	Kind        KeyframeKind
	Translation [3]float32
	Rotation    [4]float32
	Scale       [3]float32
}

// VariableCurve is a keyframed track for one transform property. Timestamps are in seconds.
type VariableCurve struct {
	// KeyframeTimestamps must be non-decreasing, non-negative and as long as Keyframes.
	KeyframeTimestamps []float32

	// Keyframes holds the values and determines the curve's kind.
	Keyframes Keyframes

	// Interpolation shapes the blend between neighbouring keyframes. Empty means linear.
	Interpolation Interpolation
}

// Kind returns the property the curve drives.
func (c VariableCurve) Kind() KeyframeKind {
	if c.Keyframes == nil {
		return KindTranslation
	}
	return c.Keyframes.Kind()
}

// EndTime returns the last keyframe timestamp, or 0 for an empty curve.
func (c VariableCurve) EndTime() float32 {
	if len(c.KeyframeTimestamps) == 0 {
		return 0
	}
	return c.KeyframeTimestamps[len(c.KeyframeTimestamps)-1]
}

// Validate checks the curve's structural invariants.
//
// Returns:
//   - error: one of the Err* sentinels wrapped with detail, or nil
func (c VariableCurve) Validate() error {
	if c.Keyframes == nil || len(c.KeyframeTimestamps) == 0 || c.Keyframes.Len() == 0 {
		return ErrEmptyCurve
	}
	if len(c.KeyframeTimestamps) != c.Keyframes.Len() {
		return fmt.Errorf("%d timestamps, %d values: %w", len(c.KeyframeTimestamps), c.Keyframes.Len(), ErrKeyframeCountMismatch)
	}
	prev := float32(0)
	for i, ts := range c.KeyframeTimestamps {
		f := float64(ts)
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("timestamp %d = %g: %w", i, f, ErrInvalidTimestamp)
		}
		if i > 0 && ts < prev {
			return fmt.Errorf("timestamp %d = %g after %g: %w", i, f, prev, ErrUnsortedTimestamps)
		}
		prev = ts
	}
	if !c.Interpolation.Valid() {
		return fmt.Errorf("%q: %w", string(c.Interpolation), ErrUnknownInterpolation)
	}
	return c.Keyframes.validate()
}

// Sample evaluates the curve at time. Times before the first keyframe hold the first value,
// times at or after the last keyframe hold the last value. Between keyframes translation and
// scale are lerped and rotation is slerped along the shortest arc.
//
// Parameters:
//   - time: the sample time in seconds
//
// Returns:
//   - Value: the sampled value for the curve's kind
func (c VariableCurve) Sample(time float32) Value {
	if c.Keyframes == nil {
		return Value{}
	}
	ts := c.KeyframeTimestamps
	n := min(len(ts), c.Keyframes.Len())
	if n == 0 {
		return Value{Kind: c.Keyframes.Kind()}
	}
	if n == 1 || time < ts[0] || math.IsNaN(float64(time)) {
		return c.Keyframes.value(0)
	}
	last := n - 1
	if time >= ts[last] {
		return c.Keyframes.value(last)
	}

	// j is the first keyframe strictly after time, so equal timestamps step to the later value
	j := sort.Search(n, func(i int) bool { return ts[i] > time })
	i := j - 1
	f := (time - ts[i]) / (ts[j] - ts[i])
	return c.Keyframes.sample(i, j, c.Interpolation.shape(f))
}

// clone deep-copies the curve so a clip never aliases caller-owned slices.
func (c VariableCurve) clone() VariableCurve {
	out := c
	out.KeyframeTimestamps = append([]float32(nil), c.KeyframeTimestamps...)
	if c.Keyframes != nil {
		out.Keyframes = c.Keyframes.clone()
	}
	return out
}
