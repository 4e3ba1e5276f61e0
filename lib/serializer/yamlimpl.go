package serializer

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ValentinKolb/roster/lib/roster"
	"gopkg.in/yaml.v3"
)

// NewYAMLSerializer creates a new serializer using yaml encoding
func NewYAMLSerializer() IRosterSerializer {
	return &yamlSerializerImpl{}
}

// yamlSerializerImpl implements the IRosterSerializer interface using yaml encoding
type yamlSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRosterSerializer)
// --------------------------------------------------------------------------

func (y yamlSerializerImpl) Name() string {
	return "yaml"
}

func (y yamlSerializerImpl) Serialize(students []roster.Student) ([]byte, error) {
	return yaml.Marshal(newTextEnvelope(students))
}

func (y yamlSerializerImpl) Deserialize(b []byte, students *[]roster.Student) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var env textEnvelope
	if err := dec.Decode(&env); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty yaml document")
		}
		return err
	}

	// a roster file holds exactly one document
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after record sequence")
	}

	result, err := env.records()
	if err != nil {
		return err
	}
	*students = result
	return nil
}
