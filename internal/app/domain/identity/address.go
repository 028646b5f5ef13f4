// Package identity carries the opaque caller identity used across the funding
// ledger. Resolution of transport credentials into an Address happens outside
// the core; services only compare addresses for equality.
package identity

import "strings"

// Address is an opaque, case-insensitive identity value. The zero value is
// the unauthenticated caller.
type Address string

// Zero is the null identity.
const Zero Address = ""

// Normalize trims surrounding whitespace and lowercases the address so
// equality checks are stable regardless of how the transport encoded it.
func Normalize(raw string) Address {
	return Address(strings.ToLower(strings.TrimSpace(raw)))
}

// IsZero reports whether the address is the null identity.
func (a Address) IsZero() bool { return strings.TrimSpace(string(a)) == "" }

// Equal reports whether two addresses name the same identity.
func (a Address) Equal(other Address) bool {
	return !a.IsZero() && Normalize(string(a)) == Normalize(string(other))
}

func (a Address) String() string { return string(a) }
