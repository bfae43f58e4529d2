package dataset

import (
	"context"
	"sync"
)

// merge fans channels into one that closes once every input is closed or ctx
// is done. It is generic over the element type so it can be driven with plain
// values as well as extracted records.
func merge[T any](ctx context.Context, channels ...<-chan T) <-chan T {
	var wg sync.WaitGroup

	wg.Add(len(channels))
	out := make(chan T)
	multiplex := func(c <-chan T) {
		defer wg.Done()
		for i := range c {
			select {
			case <-ctx.Done():
				return
			case out <- i:
			}
		}
	}

	for _, c := range channels {
		go multiplex(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
