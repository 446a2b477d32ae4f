package service

import "sync"

// TaskGroup tracks detached background tasks so the process can drain them
// before exiting. No per-task cancellation is exposed; tasks run to their own
// completion.
type TaskGroup struct {
	wg sync.WaitGroup
}

// Go runs fn on its own goroutine and tracks it until completion.
func (g *TaskGroup) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn()
	}()
}

// Wait blocks until all tracked tasks have finished.
func (g *TaskGroup) Wait() {
	g.wg.Wait()
}
