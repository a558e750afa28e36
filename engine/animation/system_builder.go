package animation

// AnimationSystemBuilderOption is a functional option for configuring an AnimationSystem during construction.
type AnimationSystemBuilderOption func(*animationSystem)

// WithWorkers sets the number of pool workers evaluating players. 1 evaluates every player
// on the calling goroutine. Defaults to NumCPU-1.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - AnimationSystemBuilderOption: functional option to set the worker count
func WithWorkers(n int) AnimationSystemBuilderOption {
	return func(s *animationSystem) {
		s.workers = max(n, 1)
	}
}

// WithParallelThreshold sets the player count below which Update runs players inline
// instead of fanning out to the pool. Defaults to 2.
//
// Parameters:
//   - n: minimum player count for parallel evaluation
//
// Returns:
//   - AnimationSystemBuilderOption: functional option to set the threshold
func WithParallelThreshold(n int) AnimationSystemBuilderOption {
	return func(s *animationSystem) {
		s.parallelThreshold = n
	}
}

// WithResolver shares an existing resolver instead of creating one. The system will not close it.
//
// Parameters:
//   - r: the resolver
//
// Returns:
//   - AnimationSystemBuilderOption: functional option to set the resolver
func WithResolver(r PathResolver) AnimationSystemBuilderOption {
	return func(s *animationSystem) {
		s.resolver = r
	}
}
