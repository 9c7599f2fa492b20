package console

import (
	"context"
	"net/url"
)

type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifySuccess
	NotifyError
)

type Notification struct {
	Level   NotifyLevel
	Message string
}

// NavEntry is one entry of the navigation header.
type NavEntry struct {
	Key   LocationKey
	Title string
}

// Chrome is the shared header mounted once per page lifetime.
type Chrome struct {
	Brand    string
	Username string
	Name     string
	Nav      []NavEntry
}

// Component is a typed view model mounted into a page slot.
type Component interface {
	component()
}

type Table struct {
	Columns []string
	Rows    [][]string
	// Empty is shown instead of the table if there are no rows.
	Empty string
}

type Option struct {
	Value string
	Label string
}

// Options feeds a select field of a form.
type Options struct {
	Items []Option
}

type DetailItem struct {
	Label string
	Value string
}

type Details struct {
	Title string
	Items []DetailItem
}

type Text struct {
	Text string
}

func (Table) component()   {}
func (Options) component() {}
func (Details) component() {}
func (Text) component()    {}

// Display renders the console. Implementations must not block.
type Display interface {
	ShowLogin(reason string)
	MountChrome(chrome Chrome)
	ClearActive()
	SetActive(key LocationKey)
	SetTitle(title string)
	MountPage(page Fragment)
	Mount(slot string, c Component)
	SetBusy(control string, busy bool)
	Notify(n Notification)
}

// Values holds the collected fields of a form. Multi-value fields keep their order.
type Values = url.Values

// FormSource collects the input of a form control.
type FormSource interface {
	// Collect returns ErrFormCancelled if the user aborted the input.
	Collect(ctx context.Context, form FormSpec, options map[string]Options) (Values, error)
}
