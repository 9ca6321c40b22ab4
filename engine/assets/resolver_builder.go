package assets

import (
	"log/slog"
	"strings"
)

// ResolverBuilderOption is a functional option for configuring a Resolver.
type ResolverBuilderOption func(r *resolverImpl)

// WithExtensions replaces the recognized mesh extensions. Extensions are matched case-insensitively
// and must include the leading dot.
//
// Parameters:
//   - exts: the extensions, e.g. ".obj"
//
// Returns:
//   - ResolverBuilderOption: option function to apply
func WithExtensions(exts ...string) ResolverBuilderOption {
	return func(r *resolverImpl) {
		r.extensions = make([]string, len(exts))
		for i, e := range exts {
			r.extensions[i] = strings.ToLower(e)
		}
	}
}

// WithResolverLogger sets the logger used for resolution diagnostics.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - ResolverBuilderOption: option function to apply
func WithResolverLogger(logger *slog.Logger) ResolverBuilderOption {
	return func(r *resolverImpl) {
		if logger != nil {
			r.logger = logger
		}
	}
}
