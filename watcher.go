package gaze

import "context"

// Watcher observes a source of mood configurations and reports the name
// of each file that changes. Names are relative to the source root so
// they compare directly against catalog paths.
type Watcher interface {
	// Watch begins observing the source and returns a channel of changed
	// file names. The channel is closed when the context is canceled or
	// an unrecoverable error occurs.
	Watch(ctx context.Context) (<-chan string, error)
}
