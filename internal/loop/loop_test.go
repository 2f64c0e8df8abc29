package loop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrain_RunsInPostOrder(t *testing.T) {
	l := New()
	var got []int
	for i := 0; i < 5; i++ {
		l.Post(func() { got = append(got, i) })
	}
	assert.Equal(t, 5, l.Len())

	assert.Equal(t, 5, l.Drain())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Zero(t, l.Drain())
}

func TestDrain_IncludesWorkPostedWhileDraining(t *testing.T) {
	l := New()
	var got []string
	l.Post(func() {
		got = append(got, "first")
		l.Post(func() { got = append(got, "nested") })
	})
	l.Post(func() { got = append(got, "second") })

	assert.Equal(t, 3, l.Drain())
	assert.Equal(t, []string{"first", "second", "nested"}, got)
}

func TestRunUntil_CompletesWorkFromOtherGoroutines(t *testing.T) {
	l := New()
	const workers = 8

	count := 0 // only touched on the loop goroutine
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			l.Post(func() { count++ })
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := l.RunUntil(ctx, func() bool { return count == workers })

	require.NoError(t, err)
	assert.Equal(t, workers, count)
	wg.Wait()
}

func TestRun_StopsOnCancel(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())

	ran := make(chan struct{})
	l.Post(func() {
		close(ran)
		cancel()
	})

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	<-ran
}

func TestRunUntil_ReturnsImmediatelyWhenDone(t *testing.T) {
	l := New()
	err := l.RunUntil(context.Background(), func() bool { return true })
	assert.NoError(t, err)
}

func TestReady_SignalsPostedWork(t *testing.T) {
	l := New()
	select {
	case <-l.Ready():
		t.Fatal("ready before any post")
	default:
	}

	ran := false
	go l.Post(func() { ran = true })

	select {
	case <-l.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("no signal after post")
	}
	assert.Equal(t, 1, l.Drain())
	assert.True(t, ran)
}
