package console

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// ErrStaleResult is returned by Load if a newer Load was started while the collection was fetched.
var ErrStaleResult = errors.New("stale list result")

// ListView loads a collection and replaces the content of its slot with the rendered result.
type ListView[F any, T any] struct {
	page   *Page
	slot   string
	fetch  func(ctx context.Context, filter F) ([]T, error)
	render func(items []T) Component

	generation atomic.Uint64
}

func NewListView[F any, T any](
	page *Page,
	slot string,
	fetch func(ctx context.Context, filter F) ([]T, error),
	render func(items []T) Component,
) *ListView[F, T] {
	return &ListView[F, T]{
		page:   page,
		slot:   slot,
		fetch:  fetch,
		render: render,
	}
}

// Refresh fetches the collection and mounts it. Failures are passed to the interceptor.
// A stale result is not a failure.
func (l *ListView[F, T]) Refresh(ctx context.Context, filter F) error {
	err := l.Load(ctx, filter)
	if errors.Is(err, ErrStaleResult) {
		return nil
	}
	if err != nil {
		l.page.Fail(ctx, err)
	}
	return err
}

// Load fetches the collection and mounts it, failures are returned to the caller.
// A result is dropped with ErrStaleResult if a newer Load was started meanwhile.
func (l *ListView[F, T]) Load(ctx context.Context, filter F) error {
	if l.page.Closed() {
		return nil
	}

	gen := l.generation.Add(1)
	items, err := l.fetch(ctx, filter)
	if current := l.generation.Load(); current != gen {
		slog.Debug("dropping stale list result", "slot", l.slot, "generation", gen, "current", current)
		return ErrStaleResult
	}
	if err != nil {
		return err
	}

	l.page.Mount(l.slot, l.render(items))
	return nil
}

// Refresher binds a fixed filter, for use as dependent refresh of a form action.
func (l *ListView[F, T]) Refresher(filter func() F) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return l.Refresh(ctx, filter())
	}
}

// FilterSubmit returns a form submit function that loads the list with the submitted filter.
// commit is only called, and the confirmation only shown, if the result was mounted.
func (l *ListView[F, T]) FilterSubmit(commit func(F), confirmation string) func(ctx context.Context, filter F) (string, error) {
	return func(ctx context.Context, filter F) (string, error) {
		err := l.Load(ctx, filter)
		if errors.Is(err, ErrStaleResult) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		commit(filter)
		return confirmation, nil
	}
}
