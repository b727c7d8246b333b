// internal/fold/type.go
package fold

import "fmt"

// Type is the binding category of a fold.
type Type int

const (
	BindingOn Type = iota
	NonbindingOff
	BindingUnknown
	NonbindingUnknown
)

// Types lists every category in report order.
var Types = [...]Type{BindingOn, NonbindingOff, BindingUnknown, NonbindingUnknown}

var typeNames = [...]string{
	BindingOn:         "binding_on",
	NonbindingOff:     "nonbinding_off",
	BindingUnknown:    "binding_unknown",
	NonbindingUnknown: "nonbinding_unknown",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Binding reports whether the category assumes the recognition is bound.
func (t Type) Binding() bool { return t == BindingOn || t == BindingUnknown }

// Unknown reports whether the signal of the category is undetermined.
func (t Type) Unknown() bool { return t == BindingUnknown || t == NonbindingUnknown }

func (t Type) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(typeNames) {
		return nil, fmt.Errorf("fold: unknown type %d", int(t))
	}
	return []byte(typeNames[t]), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if name == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("fold: unknown type %q", s)
}
