package config

import "context"

// SecretProvider abstracts the retrieval of secrets to support both AWS SSM
// Parameter Store (deployed environments) and environment variables (local
// development). The interface enables dependency injection for testing and
// environment-specific secret resolution.
type SecretProvider interface {
	// GetParametersBatch retrieves multiple secret values. The keys slice
	// contains the SSM parameter paths (or equivalent identifiers) to
	// resolve. Returns a map of key -> plaintext value for the resolved
	// parameters. Implementations may omit missing keys or report them as an
	// error; the loader treats any unresolved binding as a failure either way.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
