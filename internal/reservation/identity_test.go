package reservation

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func strptr(s string) *string { return &s }

func TestParseIdentityKinds(t *testing.T) {
	if got := ParseIdentity(nil); got.Kind != IdentityAbsent {
		t.Fatalf("nil -> %v; want absent", got.Kind)
	}
	if got := ParseIdentity(strptr("")); got.Kind != IdentityAbsent {
		t.Fatalf("empty -> %v; want absent", got.Kind)
	}
	if got := ParseIdentity(strptr("guest-user-123")); got.Kind != IdentityString {
		t.Fatalf("guest -> %v; want string", got.Kind)
	}
	u := uuid.NewString()
	if got := ParseIdentity(strptr(u)); got.Kind != IdentityRef {
		t.Fatalf("uuid -> %v; want ref", got.Kind)
	}
}

func TestRefCanonicalizesCase(t *testing.T) {
	u := "6f1b0c9e-2d4a-4b7e-9c3d-8e5f6a7b8c9d"
	id := ParseIdentity(strptr(strings.ToUpper(u)))
	if id.Canonical() != u {
		t.Fatalf("canonical = %q; want %q", id.Canonical(), u)
	}
	if !id.Matches(strings.ToUpper(u)) || !id.Matches(u) {
		t.Fatal("ref should match either spelling of its uuid")
	}
}

func TestMatchesReconciliation(t *testing.T) {
	ref := "11111111-2222-3333-4444-555555555555"
	ids := []Identity{
		ParseIdentity(strptr("guest-123")),
		ParseIdentity(strptr(ref)),
		ParseIdentity(nil),
	}

	match := func(target string) []int {
		var out []int
		for i, id := range ids {
			if id.Matches(target) {
				out = append(out, i)
			}
		}
		return out
	}

	if got := match(ref); len(got) != 1 || got[0] != 1 {
		t.Fatalf("target %q matched %v; want only the ref identity", ref, got)
	}
	if got := match("guest-123"); len(got) != 1 || got[0] != 0 {
		t.Fatalf("target guest-123 matched %v; want only the string identity", got)
	}
	if got := match("zzz"); len(got) != 0 {
		t.Fatalf("target zzz matched %v; want none", got)
	}
}

func TestGuestIdentityShape(t *testing.T) {
	id := NewGuestIdentity()
	if id.Kind != IdentityString {
		t.Fatalf("kind = %v; want string", id.Kind)
	}
	if !strings.HasPrefix(id.Canonical(), "guest-user-") {
		t.Fatalf("canonical = %q; want guest-user- prefix", id.Canonical())
	}
}
