// Package token produces the opaque identifiers used to address images and
// thumbnails. Tokens replace sequential IDs so that resource URLs cannot be
// enumerated.
package token

import (
	"fmt"

	"github.com/jaevor/go-nanoid"
)

// Length of every generated token. Uniqueness is enforced by the database;
// callers retry with a fresh token on a constraint violation.
const Length = 32

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generator returns a fixed-length random alphanumeric token on each call.
type Generator func() string

func NewGenerator() (Generator, error) {
	gen, err := nanoid.CustomASCII(alphabet, Length)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}
	return Generator(gen), nil
}
