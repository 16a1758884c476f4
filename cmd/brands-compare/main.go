package main

import (
	"errors"
	"fmt"
	"os"

	apierrors "github.com/teozeng1205/brands-compare/internal/errors"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

// describe appends the details of an API error, which carry the load diagnostic
func describe(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) && apiErr.Details != nil {
		return fmt.Sprintf("%v: %v", err, apiErr.Details)
	}
	return err.Error()
}
