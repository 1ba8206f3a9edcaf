package reservation

import "github.com/google/uuid"

func validIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}

// NormalizeID validates raw and returns its canonical lookup form: the
// lowercase UUID encoding when raw parses as one, raw itself for legacy
// string identifiers (guest ids and the like). Malformed input yields
// ErrInvalidIdentifier so callers can tell a format error from absence.
func NormalizeID(raw string) (string, error) {
	if raw == "" || raw == "undefined" {
		return "", ErrInvalidIdentifier
	}
	for _, r := range raw {
		if !validIDRune(r) {
			return "", ErrInvalidIdentifier
		}
	}
	if u, err := uuid.Parse(raw); err == nil {
		return u.String(), nil
	}
	return raw, nil
}

// LookupForms returns the identifier forms to try, canonical first. The raw
// spelling is kept as a fallback when it differs from the canonical one, so
// records written before ids were normalized still resolve.
func LookupForms(raw string) ([]string, error) {
	canonical, err := NormalizeID(raw)
	if err != nil {
		return nil, err
	}
	if canonical != raw {
		return []string{canonical, raw}, nil
	}
	return []string{canonical}, nil
}

// NewID mints an identifier in canonical form.
func NewID() string { return uuid.NewString() }
