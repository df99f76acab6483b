// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"sync"
	"sync/atomic"
)

// Batch runs a list of operations in the background.
type Batch interface {
	// Start launches the batch. Calls after the first are ignored.
	Start(ctx context.Context)
	// Done reports, without blocking, whether the batch has finished.
	Done() bool
	// Wait blocks until the batch has finished. It returns at once if Start was never called.
	Wait()
}

// background is the Start/Done/Wait plumbing shared by the batch implementations.
// The zero value is ready to use.
type background struct {
	initOnce  sync.Once
	startOnce sync.Once
	started   atomic.Bool
	done      chan struct{}
}

func (b *background) doneCh() chan struct{} {
	b.initOnce.Do(func() {
		b.done = make(chan struct{})
	})

	return b.done
}

func (b *background) start(fn func()) {
	done := b.doneCh()

	b.startOnce.Do(func() {
		b.started.Store(true)

		go func() {
			defer close(done)
			fn()
		}()
	})
}

// Done implements Batch.
func (b *background) Done() bool {
	select {
	case <-b.doneCh():
		return true
	default:
		return false
	}
}

// Wait implements Batch.
func (b *background) Wait() {
	if !b.started.Load() {
		return
	}

	<-b.doneCh()
}
