package signature

import "context"

// Repository is the port for discovering declarative signature definitions.
type Repository interface {
	// LoadAll loads all definitions from the configured rules directory.
	LoadAll(ctx context.Context) ([]*Definition, error)
}
