package dex

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseAccessFlags(t *testing.T) {
	tests := []struct {
		name   string
		value  uint32
		target AccessTarget
		want   AccessFlags
	}{
		{"none", 0, MethodTarget, AccessFlags{}},
		{"public static final", 0x19, FieldTarget, AccessFlags{AccPublic, AccStatic, AccFinal}},
		{"volatile transient", 0xc0, FieldTarget, AccessFlags{AccVolatile, AccTransient}},
		{"bridge varargs", 0xc0, MethodTarget, AccessFlags{AccBridge, AccVarargs}},
		{"class ignores 0x40 0x80", 0xc1, ClassTarget, AccessFlags{AccPublic}},
		{"constructor", 0x10001, MethodTarget, AccessFlags{AccPublic, AccConstructor}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseAccessFlags(tt.value, tt.target)); diff != "" {
				t.Errorf("ParseAccessFlags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAccessFlagsAllMethodBits(t *testing.T) {
	flags := ParseAccessFlags(math.MaxUint32, MethodTarget)
	seen := make(map[AccessFlag]bool)
	for _, f := range flags {
		seen[f] = true
	}
	if len(flags) != 18 || len(seen) != 18 {
		t.Fatalf("got %d flags (%d distinct), want 18: %s", len(flags), len(seen), flags)
	}
	if seen[AccVolatile] || seen[AccTransient] {
		t.Errorf("method flags contain field-only flags: %s", flags)
	}
	if !seen[AccBridge] || !seen[AccVarargs] {
		t.Errorf("method flags missing bridge/varargs: %s", flags)
	}
}

func TestAccessFlagsString(t *testing.T) {
	flags := ParseAccessFlags(0x9, FieldTarget)
	if got := flags.String(); got != "public static" {
		t.Errorf("String() = %q", got)
	}
	if !flags.Has(AccStatic) || flags.Has(AccFinal) {
		t.Errorf("Has() wrong for %s", flags)
	}
}
