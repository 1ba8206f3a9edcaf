package reservation

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeID(t *testing.T) {
	u := "6f1b0c9e-2d4a-4b7e-9c3d-8e5f6a7b8c9d"

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{u, u, false},
		{strings.ToUpper(u), u, false}, // canonicalized
		{"guest-user-1700000000000", "guest-user-1700000000000", false},
		{"room_42", "room_42", false},
		{"", "", true},
		{"undefined", "", true},
		{"has space", "", true},
		{"semi;colon", "", true},
	}
	for _, c := range cases {
		got, err := NormalizeID(c.in)
		if c.wantErr {
			if !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("NormalizeID(%q) err = %v; want ErrInvalidIdentifier", c.in, err)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("NormalizeID(%q) = %q, %v; want %q", c.in, got, err, c.want)
		}
	}
}

func TestLookupFormsFallback(t *testing.T) {
	u := "6f1b0c9e-2d4a-4b7e-9c3d-8e5f6a7b8c9d"

	forms, err := LookupForms(strings.ToUpper(u))
	if err != nil {
		t.Fatal(err)
	}
	if len(forms) != 2 || forms[0] != u || forms[1] != strings.ToUpper(u) {
		t.Fatalf("forms = %v; want canonical first, raw second", forms)
	}

	forms, err = LookupForms("guest-user-1")
	if err != nil || len(forms) != 1 {
		t.Fatalf("legacy forms = %v, %v; want single form", forms, err)
	}

	if _, err := LookupForms("not valid!"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("malformed = %v; want ErrInvalidIdentifier", err)
	}
}
