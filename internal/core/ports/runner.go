// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"time"
)

// ProcessRunner supervises an external converter process.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type ProcessRunner interface {
	// Run spawns command with args and waits for it to exit.
	//
	// A positive timeout kills the process once it elapses. The returned string holds
	// everything the process wrote to its diagnostic stream.
	//
	// It returns an error when the process cannot be started, times out, or exits
	// with a non-zero code.
	Run(ctx context.Context, command string, args []string, timeout time.Duration) (string, error)
}
