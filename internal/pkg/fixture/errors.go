package fixture

import "github.com/pkg/errors"

// ErrInvalidFixture indicates a fixture file that could not be parsed or
// failed validation.
var ErrInvalidFixture = errors.New("invalid fixture")
