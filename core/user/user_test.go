package user

import "testing"

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name string
		pw   string
		ok   bool
	}{
		{"valid", "Str0ng!pass", true},
		{"too short", "S7!a", false},
		{"no digit", "Strong!pass", false},
		{"no upper", "str0ng!pass", false},
		{"no lower", "STR0NG!PASS", false},
		{"no special", "Str0ngpass", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.pw)
			if tt.ok && err != nil {
				t.Fatalf("CheckPassword(%q): %v", tt.pw, err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("CheckPassword(%q): expected error", tt.pw)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  User@Example.COM "); got != "user@example.com" {
		t.Fatalf("NormalizeEmail = %q", got)
	}
}
