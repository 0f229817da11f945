package profile

import "testing"

func TestParseAccountStatus(t *testing.T) {
	active := true
	cases := []struct {
		raw  any
		want AccountStatus
	}{
		{true, StatusActive},
		{false, StatusInactive},
		{&active, StatusActive},
		{int64(1), StatusActive},
		{int64(0), StatusInactive},
		{1, StatusActive},
		{float64(0), StatusInactive},
		{"true", StatusActive},
		{"ATIVO", StatusActive},
		{"active", StatusActive},
		{"1", StatusActive},
		{"0", StatusInactive},
		{"false", StatusInactive},
		{[]byte("t"), StatusActive},
	}
	for _, tc := range cases {
		got, err := ParseAccountStatus(tc.raw)
		if err != nil {
			t.Fatalf("ParseAccountStatus(%#v): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseAccountStatus(%#v) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseAccountStatusRejectsGarbage(t *testing.T) {
	for _, raw := range []any{nil, "maybe", struct{}{}, (*bool)(nil)} {
		if _, err := ParseAccountStatus(raw); err == nil {
			t.Fatalf("expected error for %#v", raw)
		}
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Admin ")
	if err != nil || role != RoleAdmin || !role.IsAdmin() {
		t.Fatalf("expected admin, got %q (%v)", role, err)
	}
	role, err = ParseRole([]byte("agent"))
	if err != nil || role.IsAdmin() {
		t.Fatalf("expected agent, got %q (%v)", role, err)
	}
	if _, err = ParseRole(""); err == nil {
		t.Fatal("expected error for empty role")
	}
	if _, err = ParseRole(42); err == nil {
		t.Fatal("expected error for numeric role")
	}
}
