package animation

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCurve            = errors.New("curve has no keyframes")
	ErrKeyframeCountMismatch = errors.New("keyframe timestamp and value counts differ")
	ErrUnsortedTimestamps    = errors.New("keyframe timestamps are not non-decreasing")
	ErrInvalidTimestamp      = errors.New("keyframe timestamp is negative or not finite")
	ErrNonFiniteValue        = errors.New("keyframe value is not finite")
	ErrNonUnitRotation       = errors.New("rotation keyframe is not a unit quaternion")
	ErrUnknownInterpolation  = errors.New("unknown interpolation")
	ErrDuplicateCurveKind    = errors.New("path already has a curve of this kind")
	ErrClipFrozen            = errors.New("clip is already in use by a player")
)

// AuthoringError reports a curve that was rejected by AnimationClip.AddCurveToPath.
// The clip stays usable; only the offending curve is dropped.
type AuthoringError struct {
	Clip string
	Path EntityPath
	Kind KeyframeKind
	Err  error
}

func (e *AuthoringError) Error() string {
	if e.Clip != "" {
		return fmt.Sprintf("clip %q: %s curve on %q: %v", e.Clip, e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s curve on %q: %v", e.Kind, e.Path, e.Err)
}

func (e *AuthoringError) Unwrap() error {
	return e.Err
}
