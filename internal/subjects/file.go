package subjects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

// File is the on-disk form of a planning request.
type File struct {
	DailyHours float64 `json:"daily_hours,omitempty" jsonschema:"exclusiveMinimum=0,description=Hours available per day"`
	Subjects   []Entry `json:"subjects" jsonschema:"minItems=1"`
}

func (f File) List() List {
	return NewList(f.Subjects...)
}

// Schema reflects the JSON Schema for File.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		ExpandedStruct: true,
	}
	return r.Reflect(&File{})
}

func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

var (
	compileOnce sync.Once
	compiled    *validator.Schema
	compileErr  error
)

func fileSchema() (*validator.Schema, error) {
	compileOnce.Do(func() {
		raw, err := json.Marshal(Schema())
		if err != nil {
			compileErr = err
			return
		}
		doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = err
			return
		}

		c := validator.NewCompiler()
		if err := c.AddResource("subjects.json", doc); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = c.Compile("subjects.json")
	})
	return compiled, compileErr
}

// Decode validates data against the schema and decodes it.
func Decode(data []byte) (*File, error) {
	sch, err := fileSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling subjects schema: %w", err)
	}

	inst, err := validator.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: not valid JSON: %v", ErrValidation, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding subjects: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading subjects file: %w", err)
	}
	return Decode(data)
}
