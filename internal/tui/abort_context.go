package tui

import (
	"context"
	"sync"
)

var (
	abortMu  sync.RWMutex
	abortCtx context.Context
)

// SetAbortContext registers the run's root context so an in-flight credential
// form is torn down when the run is cancelled (Ctrl+C mid-restore). One
// registration covers every form the run opens; individual prompts never
// install their own signal handling.
func SetAbortContext(ctx context.Context) {
	abortMu.Lock()
	abortCtx = ctx
	abortMu.Unlock()
}

func getAbortContext() context.Context {
	abortMu.RLock()
	ctx := abortCtx
	abortMu.RUnlock()
	return ctx
}

// bindAbortContext stops app as soon as the registered context is done, so a
// credential form never outlives the restore batch that opened it.
func bindAbortContext(app *App) {
	ctx := getAbortContext()
	if ctx == nil {
		return
	}
	go func() {
		<-ctx.Done()
		app.Stop()
	}()
}
