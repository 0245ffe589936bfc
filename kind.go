package anydir

import "fmt"

// Kind tags the source of a directory or file entry.
type Kind int

// Directory and entry kinds.
const (
	// KindCt marks content embedded into the binary at build time.
	KindCt Kind = iota + 1
	// KindRt marks content read from the filesystem at run time.
	KindRt
)

// String returns the short tag of the kind, "ct" or "rt".
func (k Kind) String() string {
	switch k {
	case KindCt:
		return "ct"
	case KindRt:
		return "rt"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses the short tag of a kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "ct":
		return KindCt, nil
	case "rt":
		return KindRt, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (k Kind) MarshalText() ([]byte, error) {
	if k != KindCt && k != KindRt {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
