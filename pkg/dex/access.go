package dex

import "strings"

// AccessTarget says what kind of item an access_flags value belongs to. Bits
// 0x40 and 0x80 mean different things for fields and methods.
type AccessTarget int

const (
	ClassTarget AccessTarget = iota
	FieldTarget
	MethodTarget
)

// AccessFlag is a single decoded access flag.
type AccessFlag int

const (
	AccPublic AccessFlag = iota
	AccPrivate
	AccProtected
	AccStatic
	AccFinal
	AccSynchronized
	AccVolatile
	AccBridge
	AccTransient
	AccVarargs
	AccNative
	AccInterface
	AccAbstract
	AccStrict
	AccSynthetic
	AccAnnotation
	AccEnum
	AccUnused
	AccConstructor
	AccDeclaredSynchronized
)

var accessFlagNames = [...]string{
	AccPublic:               "public",
	AccPrivate:              "private",
	AccProtected:            "protected",
	AccStatic:               "static",
	AccFinal:                "final",
	AccSynchronized:         "synchronized",
	AccVolatile:             "volatile",
	AccBridge:               "bridge",
	AccTransient:            "transient",
	AccVarargs:              "varargs",
	AccNative:               "native",
	AccInterface:            "interface",
	AccAbstract:             "abstract",
	AccStrict:               "strictfp",
	AccSynthetic:            "synthetic",
	AccAnnotation:           "annotation",
	AccEnum:                 "enum",
	AccUnused:               "unused",
	AccConstructor:          "constructor",
	AccDeclaredSynchronized: "declared-synchronized",
}

func (f AccessFlag) String() string {
	if f >= 0 && int(f) < len(accessFlagNames) {
		return accessFlagNames[f]
	}
	return "unknown"
}

func (f AccessFlag) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// AccessFlags is an ordered set of flags.
type AccessFlags []AccessFlag

// Has reports whether flag is in the set.
func (af AccessFlags) Has(flag AccessFlag) bool {
	for _, f := range af {
		if f == flag {
			return true
		}
	}
	return false
}

func (af AccessFlags) String() string {
	names := make([]string, 0, len(af))
	for _, f := range af {
		names = append(names, f.String())
	}
	return strings.Join(names, " ")
}

// ParseAccessFlags expands an access_flags bitmask in bit order.
func ParseAccessFlags(value uint32, target AccessTarget) AccessFlags {
	flags := AccessFlags{}
	set := func(mask uint32, flag AccessFlag) {
		if value&mask != 0 {
			flags = append(flags, flag)
		}
	}
	set(0x1, AccPublic)
	set(0x2, AccPrivate)
	set(0x4, AccProtected)
	set(0x8, AccStatic)
	set(0x10, AccFinal)
	set(0x20, AccSynchronized)
	switch target {
	case FieldTarget:
		set(0x40, AccVolatile)
		set(0x80, AccTransient)
	case MethodTarget:
		set(0x40, AccBridge)
		set(0x80, AccVarargs)
	}
	set(0x100, AccNative)
	set(0x200, AccInterface)
	set(0x400, AccAbstract)
	set(0x800, AccStrict)
	set(0x1000, AccSynthetic)
	set(0x2000, AccAnnotation)
	set(0x4000, AccEnum)
	set(0x8000, AccUnused)
	set(0x10000, AccConstructor)
	set(0x20000, AccDeclaredSynchronized)
	return flags
}
