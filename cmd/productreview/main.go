// Command productreview browses the product catalog, manages the local
// wishlist and preferences, and can serve a demo catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/utafrali/productreview/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", apperrors.Message(err, "unknown error"))
		cancel()
		os.Exit(1)
	}
}
