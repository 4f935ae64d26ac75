package watcher

import "context"

// Forward delivers content-changing events to onModified until ctx is done
// or the watcher is closed. onError may be nil.
func Forward(ctx context.Context, w *Watcher, onModified func(path string), onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			if event.Modifies() {
				onModified(event.Path)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
