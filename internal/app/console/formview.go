package console

import (
	"context"
	"errors"
	"strings"
)

// ErrFormCancelled is returned by a FormSource if the user aborted the input.
var ErrFormCancelled = errors.New("form cancelled")

// FormAction submits a form: collect, validate, send, confirm, refresh.
type FormAction[P any] struct {
	page    *Page
	control string
	build   func(values Values) (P, error)
	submit  func(ctx context.Context, payload P) (string, error)
	refresh []func(ctx context.Context) error
}

func NewFormAction[P any](
	page *Page,
	control string,
	build func(values Values) (P, error),
	submit func(ctx context.Context, payload P) (string, error),
	refresh ...func(ctx context.Context) error,
) *FormAction[P] {
	return &FormAction[P]{
		page:    page,
		control: control,
		build:   build,
		submit:  submit,
		refresh: refresh,
	}
}

// Register makes the action available on its page.
func (a *FormAction[P]) Register() *FormAction[P] {
	a.page.Register(a.control, a.Run)
	return a
}

// Run executes the action. The control is busy from submission until the response was handled.
func (a *FormAction[P]) Run(ctx context.Context) error {
	values, err := a.page.collect(ctx, a.control)
	if errors.Is(err, ErrFormCancelled) {
		return nil
	}
	if err != nil {
		a.page.Fail(ctx, err)
		return err
	}

	a.page.display.SetBusy(a.control, true)
	defer a.page.display.SetBusy(a.control, false)

	payload, err := a.build(values)
	if err == nil {
		err = validatePayload(a.page.validator, payload)
	}
	if err != nil {
		a.page.Fail(ctx, err)
		return err
	}

	confirmation, err := a.submit(ctx, payload)
	if err != nil {
		a.page.Fail(ctx, err)
		return err
	}

	if confirmation != "" {
		a.page.Notify(NotifySuccess, confirmation)
	}
	for _, refresh := range a.refresh {
		if a.page.Closed() {
			break
		}
		_ = refresh(ctx) // failures are reported by the list itself
	}

	return nil
}

func joinValues(values []string) string {
	return strings.Join(values, ", ")
}
