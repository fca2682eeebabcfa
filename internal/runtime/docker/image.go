package docker

import (
	"context"
	"sync"
)

// imageCache pulls each image at most once per backend. A failed pull is
// retried on the next request.
type imageCache struct {
	engine *containerEngine

	mu     sync.Mutex
	pulled map[string]bool
}

func newImageCache(engine *containerEngine) *imageCache {
	return &imageCache{
		engine: engine,
		pulled: make(map[string]bool),
	}
}

func (i *imageCache) ensureImage(ctx context.Context, ref string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.pulled[ref] {
		return nil
	}
	if err := i.engine.pullImage(ctx, ref); err != nil {
		return err
	}
	i.pulled[ref] = true
	return nil
}
