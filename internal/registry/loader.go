package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// registryFile is the raw YAML structure of a registry override file.
type registryFile struct {
	Paths     []Path               `yaml:"paths"`
	Decisions []Decision           `yaml:"decisions"`
	Fields    map[FormKind][]Field `yaml:"fields"`
}

// LoadFile reads and validates a registry YAML file.
//
// The YAML format mirrors the Go types:
//
//	paths:
//	  - id: car
//	    name: Vehicle use
//	    steps:
//	      - {id: car-form, label: Vehicle request, kind: form, form: car}
//	      - {id: attachments, label: Supporting documents, kind: attachments}
//	      - {id: preview, label: Review bundle, kind: preview}
//	    documents: [car, attachments]
//	decisions:
//	  - id: car-decision
//	    question: Will this request use an institutional vehicle?
//	    options:
//	      - {value: "yes", label: "Yes", next_step: car-form}
//	      - {value: "no", label: "No", skip_to_next: true}
//
// When the file has no fields section, the built-in form fields are used.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses and validates a registry from YAML bytes.
func LoadBytes(data []byte) (*Registry, error) {
	var raw registryFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}

	if len(raw.Paths) == 0 {
		return nil, fmt.Errorf("%w: registry contains no paths", ErrInvalidRegistry)
	}

	fields := raw.Fields
	if len(fields) == 0 {
		fields = defaultFields()
	}

	return New(raw.Paths, raw.Decisions, fields)
}
