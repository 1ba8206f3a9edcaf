package reservation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type IdentityKind int

const (
	IdentityAbsent IdentityKind = iota
	IdentityString
	IdentityRef
)

// Identity is the payer/claimant identity as persisted. The stored
// representation is heterogeneous: authenticated checkouts wrote a
// structured user reference, guest checkouts wrote a synthesized
// placeholder string, and some rows carry nothing at all. Modeled as a
// tagged union with one normalization point instead of type checks
// scattered per call site.
type Identity struct {
	Kind IdentityKind
	raw  string
}

// ParseIdentity classifies a nullable stored value.
func ParseIdentity(raw *string) Identity {
	if raw == nil || *raw == "" {
		return Identity{Kind: IdentityAbsent}
	}
	if u, err := uuid.Parse(*raw); err == nil {
		return Identity{Kind: IdentityRef, raw: u.String()}
	}
	return Identity{Kind: IdentityString, raw: *raw}
}

// StringIdentity wraps a raw placeholder string (guest checkout).
func StringIdentity(s string) Identity {
	if s == "" {
		return Identity{Kind: IdentityAbsent}
	}
	return Identity{Kind: IdentityString, raw: s}
}

// RefIdentity wraps a structured user reference.
func RefIdentity(u uuid.UUID) Identity {
	return Identity{Kind: IdentityRef, raw: u.String()}
}

// NewGuestIdentity synthesizes a placeholder for guest checkout.
func NewGuestIdentity() Identity {
	return Identity{Kind: IdentityString, raw: fmt.Sprintf("guest-user-%d", time.Now().UnixMilli())}
}

// Canonical returns the comparable string form, empty when absent.
// Structured references canonicalize to the lowercase UUID encoding.
func (id Identity) Canonical() string { return id.raw }

// Matches compares against a target identity string. A structured
// reference also matches the target's canonicalized spelling; absent
// matches nothing.
func (id Identity) Matches(target string) bool {
	switch id.Kind {
	case IdentityAbsent:
		return false
	case IdentityRef:
		if u, err := uuid.Parse(target); err == nil {
			return id.raw == u.String()
		}
		return id.raw == target
	default:
		return id.raw == target
	}
}
