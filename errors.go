package web2pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Converter].
	ErrClosed = errors.New("web2pdf: converter is closed")
)

// UnknownFormatError is returned by [FormatByName] for a paper format
// name this package does not know.
type UnknownFormatError struct {
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("web2pdf: unknown page format %q", e.Name)
}

// MalformedHeaderError is returned by [ParseHeader] for an entry that is
// not of the form "Name: Value".
type MalformedHeaderError struct {
	Entry string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("web2pdf: malformed header %q (want \"Name: Value\")", e.Entry)
}
