package main

import (
	"fmt"
	"os"

	"blogagent/cmd/handlers"
	"blogagent/internal/logger"

	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	logger.Init()

	// maxprocs.Set only fails on an invalid GOMAXPROCS env; runtime defaults apply then.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	if err := handlers.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
