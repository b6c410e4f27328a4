package claims

import (
	"context"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"agent", RoleAgent, true},
		{"Agent", RoleAgent, true},
		{" AGENT ", RoleAgent, true},
		{"renter/buyer", RoleRenterBuyer, true},
		{"Renter", RoleRenterBuyer, true},
		{"buyer", RoleRenterBuyer, true},
		{"admin", RoleAdmin, true},
		{"landlord", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ParseRole(%q): unexpected error %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ParseRole(%q): expected error, got %q", tt.in, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClaimsRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, err := Get(ctx); err == nil {
		t.Fatal("expected error on empty context")
	}

	want := Claims{UserID: "u1", Email: "a@b.c", Role: RoleAgent}
	ctx = Set(ctx, want)

	got, err := Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}

	if IsAdmin(ctx) {
		t.Fatal("agent claims reported as admin")
	}

	if !IsAdmin(Set(ctx, Claims{UserID: "u2", Role: RoleAdmin})) {
		t.Fatal("admin claims not reported as admin")
	}
}
