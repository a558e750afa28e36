package animation

// AnimationClipBuilderOption is a functional option for configuring an AnimationClip during construction.
type AnimationClipBuilderOption func(*animationClip)

// WithClipName sets the clip's name, used in diagnostics and by the loader's clip cache.
//
// Parameters:
//   - name: the clip name
//
// Returns:
//   - AnimationClipBuilderOption: functional option to set the name
func WithClipName(name string) AnimationClipBuilderOption {
	return func(c *animationClip) {
		c.name = name
	}
}
