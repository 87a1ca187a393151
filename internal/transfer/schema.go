package transfer

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/elemental/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// Schema validates save-file entries.
//
// A cue.Context is not safe for concurrent use; Schema serializes access.
type Schema struct {
	mu      sync.Mutex
	ctx     *cue.Context
	element cue.Value
	pair    cue.Value
}

// NewSchema compiles the embedded schema.
func NewSchema() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{
		ctx:     ctx,
		element: v.LookupPath(cue.ParsePath("#Element")),
		pair:    v.LookupPath(cue.ParsePath("#Pair")),
	}, nil
}

// Element validates raw JSON as one element.
func (s *Schema) Element(raw []byte) (ir.Element, error) {
	var e ir.Element
	err := s.check(s.element, raw, &e)
	return e, err
}

// Pair validates raw JSON as exactly two elements.
func (s *Schema) Pair(raw []byte) (ir.Pair, error) {
	var elems []ir.Element
	if err := s.check(s.pair, raw, &elems); err != nil {
		return ir.Pair{}, err
	}
	return ir.Pair{elems[0], elems[1]}, nil
}

func (s *Schema) check(def cue.Value, raw []byte, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expr, err := cuejson.Extract("entry.json", raw)
	if err != nil {
		return fmt.Errorf("not valid JSON: %w", err)
	}
	v := s.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return err
	}
	u := def.Unify(v)
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return u.Decode(out)
}
