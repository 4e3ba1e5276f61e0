package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ValentinKolb/roster/lib/roster"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRosterSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRosterSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRosterSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Name() string {
	return "json"
}

func (j jsonSerializerImpl) Serialize(students []roster.Student) ([]byte, error) {
	return json.Marshal(newTextEnvelope(students))
}

func (j jsonSerializerImpl) Deserialize(b []byte, students *[]roster.Student) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var env textEnvelope
	if err := dec.Decode(&env); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("unexpected data after record sequence")
	}

	result, err := env.records()
	if err != nil {
		return err
	}
	*students = result
	return nil
}
