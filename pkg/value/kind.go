package value

// Kind is the type tag of a Value. The set is closed: every value crossing
// an adapter boundary carries exactly one of these tags.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Char
	Short
	Int
	Long
	Float
	Double
	String
	Buffer
	Array
	Map
	Ptr
	Future
	Function
	Null
	Class
	Object
	Exception
	Throwable
)

// KindCount is the number of valid kinds, excluding Invalid.
const KindCount = int(Throwable)

var kindNames = map[Kind]string{
	Invalid:   "invalid",
	Bool:      "bool",
	Char:      "char",
	Short:     "short",
	Int:       "int",
	Long:      "long",
	Float:     "float",
	Double:    "double",
	String:    "string",
	Buffer:    "buffer",
	Array:     "array",
	Map:       "map",
	Ptr:       "ptr",
	Future:    "future",
	Function:  "function",
	Null:      "null",
	Class:     "class",
	Object:    "object",
	Exception: "exception",
	Throwable: "throwable",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// KindByName resolves a kind from its textual name, Invalid if unknown.
func KindByName(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return Invalid
}

// Kinds returns all valid kinds in tag order.
func Kinds() []Kind {
	ks := make([]Kind, 0, KindCount)
	for k := Bool; k <= Throwable; k++ {
		ks = append(ks, k)
	}
	return ks
}

// IsNumeric reports whether the kind participates in numeric adjacency
// coercion (bool through double).
func (k Kind) IsNumeric() bool {
	return k >= Bool && k <= Double
}

// IsInteger reports whether the kind holds an integral payload.
func (k Kind) IsInteger() bool {
	return k >= Bool && k <= Long
}

// IsComposite reports whether the kind owns child values.
func (k Kind) IsComposite() bool {
	return k == Array || k == Map
}
