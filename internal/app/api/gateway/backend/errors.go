package backend

import "fmt"

// Failure is a service error carrying a message for the API client.
// It unwraps to one of the domain sentinel errors.
type Failure struct {
	Kind    error
	Message string
}

func fail(kind error, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Kind
}
