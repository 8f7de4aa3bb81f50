package driven

import "context"

// SourceWatcher reports batches of filesystem changes under a directory tree.
type SourceWatcher interface {
	// Watch blocks until ctx is cancelled, calling onChange with the
	// changed paths after each quiet period. Changes to entries whose
	// name matches skip are ignored.
	Watch(ctx context.Context, root string, skip func(name string) bool, onChange func(paths []string)) error
}
