package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerWait(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(
		RunFunc(func(context.Context) error { return errA }),
		NamedRun("b", RunFunc(func(context.Context) error { return errB })),
		RunFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	)
	cancel()
	err := r.Wait()
	require.Error(t, err)
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	require.Len(t, err.(*AggregatedError).Errors, 2)
}

func TestRunnerWaitCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, r.Wait())
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	var canceled bool
	cancel()
	err := RunWithContextCancel(ctx, func() {
		canceled = true
		close(stop)
	}, func() error {
		<-stop
		return errors.New("closed")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, canceled)

	require.EqualError(t, RunWithContext(context.Background(), func() error {
		return errors.New("done")
	}), "done")
}
