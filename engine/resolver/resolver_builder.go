package resolver

// PathResolverBuilderOption is a functional option for configuring a PathResolver during construction.
type PathResolverBuilderOption func(*pathResolver)

// WithAmbiguityPolicy sets how duplicate sibling names are handled. Defaults to AmbiguityFirstMatch.
//
// Parameters:
//   - policy: the ambiguity policy
//
// Returns:
//   - PathResolverBuilderOption: functional option to set the policy
func WithAmbiguityPolicy(policy AmbiguityPolicy) PathResolverBuilderOption {
	return func(r *pathResolver) {
		r.policy = policy
	}
}

// WithCaching toggles the resolution cache. Without it every Resolve walks the hierarchy.
//
// Parameters:
//   - enabled: false to disable caching
//
// Returns:
//   - PathResolverBuilderOption: functional option to toggle caching
func WithCaching(enabled bool) PathResolverBuilderOption {
	return func(r *pathResolver) {
		r.caching = enabled
	}
}

// WithWarnings toggles the log line emitted for ambiguous names. Ambiguity is still counted.
//
// Parameters:
//   - enabled: false to silence warnings
//
// Returns:
//   - PathResolverBuilderOption: functional option to toggle warnings
func WithWarnings(enabled bool) PathResolverBuilderOption {
	return func(r *pathResolver) {
		r.logWarnings = enabled
	}
}
