package discordrpc

import (
	"testing"

	"github.com/small-frappuccino/richpresence/pkg/errors"
)

func TestValidateClientID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: " 1234567890123456789 ", want: "1234567890123456789", ok: true},
		{in: "", ok: false},
		{in: "not-a-number", ok: false},
		{in: "42", ok: false},
	}
	for _, tc := range cases {
		got, err := ValidateClientID(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("ValidateClientID(%q) = %q, %v", tc.in, got, err)
			}
			continue
		}
		if !errors.IsCategory(err, errors.CategoryValidation) {
			t.Fatalf("ValidateClientID(%q) expected validation error, got %v", tc.in, err)
		}
	}
}
