package web2pdf

import (
	"context"
	"errors"

	"github.com/chromedp/cdproto/runtime"
)

// evaluate runs a JavaScript expression in the page and surfaces any
// thrown exception as an error.
func evaluate(ctx context.Context, expression string) error {
	_, exc, err := runtime.Evaluate(expression).Do(ctx)
	if err != nil {
		return err
	}
	if exc != nil {
		return errors.New(exceptionMessage(exc))
	}
	return nil
}

// exceptionMessage extracts a readable message from exception details.
func exceptionMessage(exc *runtime.ExceptionDetails) string {
	if exc.Exception != nil && exc.Exception.Description != "" {
		return exc.Exception.Description
	}
	return exc.Text
}
