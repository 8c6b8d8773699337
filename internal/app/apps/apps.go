// Package apps wires configuration into the runnable client and server
// applications.
package apps

import "context"

// App is a runnable application entrypoint.
type App interface {
	Run(ctx context.Context, args []string) error
}
