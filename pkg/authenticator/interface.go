package authenticator

import "time"

type TokenEngine[T any] interface {
	// Generate creates a signed token for sub carrying obj, valid for the configured expiration.
	Generate(sub string, obj T) (string, error)

	// Verify checks the signature and expiration of token and returns the object it carries.
	Verify(token string) (T, error)
}

// Clock returns the current time, overridable in tests.
type Clock func() time.Time
