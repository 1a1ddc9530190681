package classpath

import (
	"github.com/pkg/errors"
)

// Descriptor is a parsed method descriptor such as "(I[Ljava/lang/String;)V".
type Descriptor struct {
	Params []string
	Return string
}

// ParseDescriptor validates a method descriptor and splits it into
// parameter and return type descriptors.
func ParseDescriptor(desc string) (Descriptor, error) {
	if len(desc) < 3 || desc[0] != '(' {
		return Descriptor{}, errors.Errorf("malformed method descriptor %q", desc)
	}
	var d Descriptor
	pos := 1
	for pos < len(desc) && desc[pos] != ')' {
		end, err := fieldType(desc, pos)
		if err != nil {
			return Descriptor{}, err
		}
		d.Params = append(d.Params, desc[pos:end])
		pos = end
	}
	if pos >= len(desc) {
		return Descriptor{}, errors.Errorf("method descriptor %q has no closing parenthesis", desc)
	}
	pos++
	if pos < len(desc) && desc[pos] == 'V' && pos+1 == len(desc) {
		d.Return = "V"
		return d, nil
	}
	end, err := fieldType(desc, pos)
	if err != nil {
		return Descriptor{}, err
	}
	if end != len(desc) {
		return Descriptor{}, errors.Errorf("trailing characters in method descriptor %q", desc)
	}
	d.Return = desc[pos:end]
	return d, nil
}

// fieldType returns the end of the field type descriptor starting at pos.
func fieldType(desc string, pos int) (int, error) {
	for pos < len(desc) && desc[pos] == '[' {
		pos++
	}
	if pos >= len(desc) {
		return 0, errors.Errorf("truncated type in method descriptor %q", desc)
	}
	switch desc[pos] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return pos + 1, nil
	case 'L':
		start := pos + 1
		for pos < len(desc) && desc[pos] != ';' {
			pos++
		}
		if pos >= len(desc) || pos == start {
			return 0, errors.Errorf("malformed class type in method descriptor %q", desc)
		}
		return pos + 1, nil
	default:
		return 0, errors.Errorf("unexpected character %q at %d in method descriptor %q", desc[pos], pos, desc)
	}
}
