// Package learnable is the client core of the LearnABLE teacher platform:
// an HTTP gateway over the LearnABLE REST backend and the resumable wizards
// that drive it
package learnable

const (
	// Name identifies this application in logs and request headers
	Name = "learnable"

	// Version is the current release of the client core
	Version = "0.4.0"
)
