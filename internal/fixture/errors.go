package fixture

import (
	"errors"
	"fmt"
)

// The error taxonomy for the fixture tree. Structural and addressing
// violations are programmer errors: they are returned to the caller and
// never silently recovered.
var (
	// ErrStructural covers misuse of the tree: reentrant mutation,
	// duplicate or missing children, packet-spec changes outside the
	// rebuild callback.
	ErrStructural = errors.New("structural violation")

	// ErrReentrancy is a structural mutation attempted while the render
	// loop is iterating the tree.
	ErrReentrancy = fmt.Errorf("mutation during render iteration: %w", ErrStructural)

	// ErrDuplicateChild is an attempt to attach an already-attached child.
	ErrDuplicateChild = fmt.Errorf("duplicate child: %w", ErrStructural)

	// ErrUnknownChild is an attempt to detach a fixture that is not a child.
	ErrUnknownChild = fmt.Errorf("unknown child: %w", ErrStructural)

	// ErrAddressing is an index-buffer offset resolving past the total
	// size of the subtree.
	ErrAddressing = errors.New("addressing error")

	// ErrConfiguration is malformed persisted fixture data.
	ErrConfiguration = errors.New("configuration error")
)
