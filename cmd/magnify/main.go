package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"magnify/internal/services"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(130)
	}
	fmt.Fprintln(os.Stderr, "magnify:", err)
	if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrConfiguration) {
		os.Exit(2)
	}
	os.Exit(1)
}
