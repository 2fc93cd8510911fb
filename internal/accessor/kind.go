package accessor

// Kind is the type category of a field. It decides which operators a
// predicate may use and how the comparator orders values.
type Kind int

const (
	KindInvalid Kind = iota
	KindText
	KindTextual
	KindInt
	KindFloat
	KindBool
	KindTime
	KindOpaque
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindText:    "text",
	KindTextual: "textual",
	KindInt:     "int",
	KindFloat:   "float",
	KindBool:    "bool",
	KindTime:    "time",
	KindOpaque:  "opaque",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Ordered reports whether values of k have a native total order.
func (k Kind) Ordered() bool {
	switch k {
	case KindInt, KindFloat, KindBool, KindTime:
		return true
	}
	return false
}

// Textlike reports whether values of k compare as text.
func (k Kind) Textlike() bool {
	return k == KindText || k == KindTextual
}

// Sortable reports whether k can back a sort key.
func (k Kind) Sortable() bool {
	return k.Ordered() || k.Textlike()
}
