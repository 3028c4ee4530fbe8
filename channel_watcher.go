package gaze

import "context"

// ChannelWatcher wraps an existing channel of file names as a Watcher.
// Useful for testing and for sources that learn of changes some other
// way, such as an upload endpoint.
type ChannelWatcher struct {
	ch <-chan string
}

// NewChannelWatcher creates a ChannelWatcher that forwards names from the
// given channel.
func NewChannelWatcher(ch <-chan string) *ChannelWatcher {
	return &ChannelWatcher{ch: ch}
}

// Watch returns a channel that emits names from the wrapped channel.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-w.ch:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
