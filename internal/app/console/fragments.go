package console

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed assets/fragments/*.yml
var fragmentFiles embed.FS

const HeaderFragment = "header"

type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldSecret      FieldKind = "secret"
	FieldNumber      FieldKind = "number"
	FieldTextArea    FieldKind = "textarea"
	FieldSelect      FieldKind = "select"
	FieldMultiSelect FieldKind = "multiselect"
	FieldFile        FieldKind = "file"
	FieldBool        FieldKind = "bool"
)

type FormField struct {
	Name     string    `yaml:"name"`
	Label    string    `yaml:"label"`
	Kind     FieldKind `yaml:"kind"`
	Default  string    `yaml:"default"`
	Required bool      `yaml:"required"`
	// Choices are the fixed options of a select field.
	Choices []string `yaml:"choices"`
	// Source names the slot whose Options feed a select field.
	Source string `yaml:"source"`
}

// FormSpec describes an interactive control of a page and the fields it collects.
type FormSpec struct {
	Name   string      `yaml:"name"`
	Title  string      `yaml:"title"`
	Fields []FormField `yaml:"fields"`
}

// Fragment is a page layout: the slots lists are mounted into and the controls of the page.
type Fragment struct {
	Name     string     `yaml:"name"`
	Title    string     `yaml:"title"`
	Slots    []string   `yaml:"slots"`
	Controls []FormSpec `yaml:"controls"`
}

func (f Fragment) Control(name string) (FormSpec, bool) {
	for _, c := range f.Controls {
		if c.Name == name {
			return c, true
		}
	}
	return FormSpec{}, false
}

// Fragments loads page layouts by name.
type Fragments interface {
	Load(ctx context.Context, name string) (Fragment, error)
}

// EmbeddedFragments serves the layouts compiled into the binary, or any other fs.FS.
type EmbeddedFragments struct {
	fsys fs.FS
	dir  string
}

func NewEmbeddedFragments() *EmbeddedFragments {
	return &EmbeddedFragments{fsys: fragmentFiles, dir: "assets/fragments"}
}

func NewFragmentsFromFS(fsys fs.FS, dir string) *EmbeddedFragments {
	return &EmbeddedFragments{fsys: fsys, dir: dir}
}

func (e *EmbeddedFragments) Load(_ context.Context, name string) (Fragment, error) {
	data, err := fs.ReadFile(e.fsys, path.Join(e.dir, name+".yml"))
	if err != nil {
		return Fragment{}, fmt.Errorf("failed to read fragment %s: %w", name, err)
	}

	var frag Fragment
	if err := yaml.Unmarshal(data, &frag); err != nil {
		return Fragment{}, fmt.Errorf("failed to parse fragment %s: %w", name, err)
	}
	if frag.Name == "" {
		frag.Name = name
	}

	return frag, nil
}
