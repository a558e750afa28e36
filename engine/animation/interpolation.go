package animation

import (
	"github.com/fogleman/ease"
)

// Interpolation selects how a curve blends between two neighbouring keyframes.
// The zero value behaves as InterpolationLinear.
type Interpolation string

const (
	InterpolationLinear     Interpolation = "linear"
	InterpolationStep       Interpolation = "step"
	InterpolationInQuad     Interpolation = "in_quad"
	InterpolationOutQuad    Interpolation = "out_quad"
	InterpolationInOutQuad  Interpolation = "in_out_quad"
	InterpolationInCubic    Interpolation = "in_cubic"
	InterpolationOutCubic   Interpolation = "out_cubic"
	InterpolationInOutCubic Interpolation = "in_out_cubic"
	InterpolationInOutSine  Interpolation = "in_out_sine"
)

// easings reshape the normalized segment fraction. Every entry maps 0 to 0 and 1 to 1.
var easings = map[Interpolation]func(float64) float64{
	InterpolationInQuad:     ease.InQuad,
	InterpolationOutQuad:    ease.OutQuad,
	InterpolationInOutQuad:  ease.InOutQuad,
	InterpolationInCubic:    ease.InCubic,
	InterpolationOutCubic:   ease.OutCubic,
	InterpolationInOutCubic: ease.InOutCubic,
	InterpolationInOutSine:  ease.InOutSine,
}

// Valid reports whether i names a supported interpolation.
func (i Interpolation) Valid() bool {
	switch i {
	case "", InterpolationLinear, InterpolationStep:
		return true
	}
	_, ok := easings[i]
	return ok
}

// shape maps a segment fraction f in [0, 1) to the blend factor handed to lerp/slerp.
func (i Interpolation) shape(f float32) float32 {
	switch i {
	case "", InterpolationLinear:
		return f
	case InterpolationStep:
		return 0
	}
	if fn, ok := easings[i]; ok && f > 0 {
		return float32(fn(float64(f)))
	}
	return f
}
