package util

import "testing"

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":             "",
		"ab":           "ab",
		"abcd":         "a...d",
		"abcdefgh":     "ab...gh",
		"abcdefghijkl": "abcd...ijkl",
	}
	for in, want := range cases {
		if got := MaskSecret(in); got != want {
			t.Fatalf("MaskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskSensitiveQuery(t *testing.T) {
	cases := map[string]string{
		"":                                 "",
		"redirect=%2Fadmin&page=2":         "redirect=%2Fadmin&page=2",
		"access_token=abcdefghijkl&page=2": "access_token=abcd...ijkl&page=2",
		"senha=segredo123":                 "senha=segr...o123",
		"reset_password=12345":             "reset_password=12...45",
	}
	for in, want := range cases {
		if got := MaskSensitiveQuery(in); got != want {
			t.Fatalf("MaskSensitiveQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
