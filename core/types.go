package core

import "context"

// Worker is a long running module process. Run blocks until ctx is done or the worker is shut down.
type Worker interface {
	Run(ctx context.Context) error
}
