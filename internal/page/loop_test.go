package page

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoop_ReadyFiresOnce(t *testing.T) {
	l := NewLoop()
	calls := 0
	if !l.OnReady(func() { calls++ }) {
		t.Fatalf("OnReady before fire should be accepted")
	}

	if !l.FireReady() {
		t.Fatalf("first FireReady should queue handlers")
	}
	if l.FireReady() {
		t.Fatalf("second FireReady should be a no-op")
	}
	if l.OnReady(func() { calls++ }) {
		t.Fatalf("OnReady after fire should be rejected")
	}

	l.RunPending()
	if calls != 1 {
		t.Fatalf("expected ready handler to run once, ran %d times", calls)
	}
}

func TestLoop_RunPendingRunsNestedPosts(t *testing.T) {
	l := NewLoop()
	var order []int
	l.Post(func() {
		order = append(order, 1)
		l.Post(func() { order = append(order, 3) })
	})
	l.Post(func() { order = append(order, 2) })

	if n := l.RunPending(); n != 3 {
		t.Fatalf("expected 3 tasks, ran %d", n)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestLoop_DoAndAfterFunc(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	ran := false
	if err := l.Do(ctx, func() { ran = true }); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !ran {
		t.Fatalf("task did not run")
	}

	fired := make(chan struct{})
	l.AfterFunc(10*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("deferred task never ran")
	}

	if err := l.Run(ctx); !errors.Is(err, ErrLoopRunning) {
		t.Fatalf("expected ErrLoopRunning, got %v", err)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
	if l.Post(func() {}) {
		t.Fatalf("Post after stop should fail")
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("expected ErrLoopStopped, got %v", err)
	}
}

func TestLoop_StopReleasesPendingDo(t *testing.T) {
	l := NewLoop()
	errCh := make(chan error, 1)
	go func() { errCh <- l.Do(context.Background(), func() {}) }()

	// wait until the task is queued
	deadline := time.Now().Add(2 * time.Second)
	for {
		l.mu.Lock()
		queued := len(l.queue)
		l.mu.Unlock()
		if queued == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("task never queued")
		}
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrLoopStopped) {
			t.Fatalf("expected ErrLoopStopped, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Do still blocked after the loop stopped")
	}
}
