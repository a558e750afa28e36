package animation

// AnimationPlayerBuilderOption is a functional option for configuring an AnimationPlayer during construction.
type AnimationPlayerBuilderOption func(*animationPlayer)

// WithSpeed sets the initial playback rate multiplier.
//
// Parameters:
//   - speed: the rate multiplier (negative plays backwards)
//
// Returns:
//   - AnimationPlayerBuilderOption: functional option to set the speed
func WithSpeed(speed float32) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.speed = speed
	}
}

// WithClip starts playing clip immediately. Because playing clears repeat, pass WithRepeat after it.
//
// Parameters:
//   - clip: the clip to play
//
// Returns:
//   - AnimationPlayerBuilderOption: functional option to start the clip
func WithClip(clip AnimationClip) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.playLocked(clip)
	}
}

// WithRepeat sets whether playback wraps at the clip's end.
//
// Parameters:
//   - repeat: true to wrap
//
// Returns:
//   - AnimationPlayerBuilderOption: functional option to set repeat
func WithRepeat(repeat bool) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.repeat = repeat
	}
}

// WithMissLogging toggles the log line emitted when a clip path stops resolving.
// Misses are still counted in ApplyStats either way.
//
// Parameters:
//   - enabled: false to silence miss logging
//
// Returns:
//   - AnimationPlayerBuilderOption: functional option to set miss logging
func WithMissLogging(enabled bool) AnimationPlayerBuilderOption {
	return func(p *animationPlayer) {
		p.logMisses = enabled
	}
}
