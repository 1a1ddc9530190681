package classpath

import (
	"encoding/json"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

type MethodInfo struct {
	Name       string `json:"name" cbor:"0,keyasint"`
	Descriptor string `json:"descriptor" cbor:"1,keyasint"`
	Public     bool   `json:"public,omitempty" cbor:"2,keyasint,omitempty"`
	Static     bool   `json:"static,omitempty" cbor:"3,keyasint,omitempty"`
}

// Class describes one class of the classpath. Names use the internal
// slash-separated form, e.g. "java/lang/Object".
type Class struct {
	Name       string       `json:"name" cbor:"0,keyasint"`
	Super      string       `json:"super,omitempty" cbor:"1,keyasint,omitempty"`
	Interfaces []string     `json:"interfaces,omitempty" cbor:"2,keyasint,omitempty"`
	Methods    []MethodInfo `json:"methods,omitempty" cbor:"3,keyasint,omitempty"`
}

// Provider gives access to class descriptions.
type Provider interface {
	Class(name string) (*Class, bool)
}

// MapProvider is an in-memory Provider.
type MapProvider struct {
	classes map[string]*Class
}

func NewMapProvider(classes ...Class) *MapProvider {
	p := &MapProvider{classes: make(map[string]*Class, len(classes))}
	for i := range classes {
		p.Add(classes[i])
	}
	return p
}

func (p *MapProvider) Add(c Class) {
	p.classes[c.Name] = &c
}

func (p *MapProvider) Class(name string) (*Class, bool) {
	c, ok := p.classes[name]
	return c, ok
}

func (p *MapProvider) Len() int {
	return len(p.classes)
}

type Format byte

const (
	FormatJSON Format = iota
	FormatCBOR
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return 0, errors.Errorf("unknown class index format %q", s)
	}
}

type index struct {
	Classes []Class `json:"classes" cbor:"0,keyasint"`
}

// LoadIndex reads a class index in the given format.
func LoadIndex(r io.Reader, format Format) (*MapProvider, error) {
	var idx index
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&idx); err != nil {
			return nil, errors.Wrap(err, "failed to decode JSON class index")
		}
	case FormatCBOR:
		if err := cbor.NewDecoder(r).Decode(&idx); err != nil {
			return nil, errors.Wrap(err, "failed to decode CBOR class index")
		}
	default:
		return nil, errors.Errorf("unsupported class index format %d", format)
	}
	for i, c := range idx.Classes {
		if c.Name == "" {
			return nil, errors.Errorf("class #%d has no name", i)
		}
	}
	return NewMapProvider(idx.Classes...), nil
}

// SaveIndex writes the classes in the given format.
func SaveIndex(w io.Writer, format Format, classes []Class) error {
	idx := index{Classes: classes}
	switch format {
	case FormatJSON:
		return errors.Wrap(json.NewEncoder(w).Encode(idx), "failed to encode JSON class index")
	case FormatCBOR:
		return errors.Wrap(cbor.NewEncoder(w).Encode(idx), "failed to encode CBOR class index")
	default:
		return errors.Errorf("unsupported class index format %d", format)
	}
}
