package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/ValentinKolb/roster/lib/roster"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() IRosterSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IRosterSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// gobEnvelope wraps the records so that an empty roster is still a non-zero value
// and foreign gob streams are rejected.
type gobEnvelope struct {
	Version  uint8
	Students []roster.Student
}

const gobVersion = 1

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRosterSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Name() string {
	return "gob"
}

func (g gobSerializerImpl) Serialize(students []roster.Student) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(gobEnvelope{Version: gobVersion, Students: students}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, students *[]roster.Student) error {
	var env gobEnvelope
	dec := gob.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&env); err != nil {
		return err
	}
	if env.Version != gobVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", env.Version, gobVersion)
	}
	*students = nonNil(env.Students)
	return nil
}

// nonNil returns an empty slice for nil so decoded rosters compare equal
// regardless of the format they came from
func nonNil(students []roster.Student) []roster.Student {
	if students == nil {
		return []roster.Student{}
	}
	return students
}
