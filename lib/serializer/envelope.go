package serializer

import (
	"fmt"

	"github.com/ValentinKolb/roster/lib/roster"
)

const textVersion = 1

// textEnvelope is the document written by the text serializers (json, yaml).
// Count must match the number of records, so a document that lost records
// is rejected even when the rest still parses.
type textEnvelope struct {
	Version  uint8         `json:"version" yaml:"version"`
	Count    *int          `json:"count" yaml:"count"`
	Students []*textRecord `json:"students" yaml:"students"`
}

// textRecord uses pointers so that missing keys and null values can be told
// apart from empty strings
type textRecord struct {
	Name       *string `json:"name" yaml:"name"`
	RollNumber *string `json:"roll_number" yaml:"roll_number"`
	Grade      *string `json:"grade" yaml:"grade"`
}

func newTextEnvelope(students []roster.Student) textEnvelope {
	records := make([]*textRecord, len(students))
	for i := range students {
		s := students[i]
		records[i] = &textRecord{Name: &s.Name, RollNumber: &s.RollNumber, Grade: &s.Grade}
	}
	count := len(records)
	return textEnvelope{Version: textVersion, Count: &count, Students: records}
}

// records validates the envelope and returns the decoded roster
func (e textEnvelope) records() ([]roster.Student, error) {
	if e.Version != textVersion {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", e.Version, textVersion)
	}
	if e.Count == nil {
		return nil, fmt.Errorf("missing record count")
	}
	if e.Students == nil {
		return nil, fmt.Errorf("missing record sequence")
	}
	if *e.Count != len(e.Students) {
		return nil, fmt.Errorf("record count mismatch: header says %d, found %d", *e.Count, len(e.Students))
	}

	students := make([]roster.Student, len(e.Students))
	for i, r := range e.Students {
		if r == nil {
			return nil, fmt.Errorf("record %d is null", i)
		}
		if r.Name == nil || r.RollNumber == nil || r.Grade == nil {
			return nil, fmt.Errorf("record %d: name, roll_number and grade are required", i)
		}
		students[i] = roster.New(*r.Name, *r.RollNumber, *r.Grade)
	}
	return students, nil
}
