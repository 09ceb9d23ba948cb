package singleflight

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/nwaycache/internal/util"
)

func newGroup() *Group[string, string] {
	return New[string, string](util.HashString, func(a, b string) bool { return a == b })
}

func TestGroup_CoalescesConcurrentCalls(t *testing.T) {
	t.Parallel()

	g := newGroup()
	var calls atomic.Int64
	release := make(chan struct{})

	var eg errgroup.Group
	for range 16 {
		eg.Go(func() error {
			v, err := g.Do(context.Background(), "k", func() (string, error) {
				calls.Add(1)
				<-release
				return "v", nil
			})
			if err != nil {
				return err
			}
			if v != "v" {
				return errors.New("unexpected value " + v)
			}
			return nil
		})
	}

	// Give followers time to attach before the leader finishes.
	time.Sleep(20 * time.Millisecond)
	close(release)
	require.NoError(t, eg.Wait())
	require.Equal(t, int64(1), calls.Load())
}

func TestGroup_UsesEquality(t *testing.T) {
	t.Parallel()

	g := New[string, int](
		func(k string) uint64 { return util.HashString(strings.ToLower(k)) },
		strings.EqualFold,
	)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan int, 1)
	go func() {
		v, _ := g.Do(context.Background(), "KEY", func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()
	<-started

	var followerRan atomic.Bool
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	v, err := g.Do(context.Background(), "key", func() (int, error) {
		followerRan.Store(true)
		return 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.False(t, followerRan.Load())
	require.Equal(t, 1, <-done)
}

func TestGroup_FollowerCancellation(t *testing.T) {
	t.Parallel()

	g := newGroup()
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _ = g.Do(context.Background(), "k", func() (string, error) {
			close(started)
			<-release
			return "v", nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Do(ctx, "k", func() (string, error) { return "other", nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestGroup_ErrorsAreShared(t *testing.T) {
	t.Parallel()

	g := newGroup()
	boom := errors.New("boom")
	_, err := g.Do(context.Background(), "k", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	// A finished flight is forgotten; the next call runs fn again.
	v, err := g.Do(context.Background(), "k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}

func TestGroup_PanicReleasesKey(t *testing.T) {
	t.Parallel()

	g := newGroup()
	require.Panics(t, func() {
		_, _ = g.Do(context.Background(), "k", func() (string, error) { panic("loader") })
	})

	v, err := g.Do(context.Background(), "k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	require.Equal(t, "ok", v)
}
