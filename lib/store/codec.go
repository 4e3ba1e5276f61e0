package store

import (
	"io"

	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/ValentinKolb/roster/lib/serializer"
)

// WriteRecords serializes the records with s and writes them to w as a single unit.
// Encoding failures are returned as RetCInternalError, write failures as RetCIOError.
func WriteRecords(w io.Writer, s serializer.IRosterSerializer, students []roster.Student) error {
	data, err := s.Serialize(students)
	if err != nil {
		return WrapError(RetCInternalError, "unable to serialize records", err)
	}

	if _, err := w.Write(data); err != nil {
		return WrapError(RetCIOError, "unable to write records", err)
	}

	Logger.Debugf("wrote %d records (%d bytes, %s)", len(students), len(data), s.Name())
	return nil
}

// ReadRecords reads r until EOF and decodes the data with s.
// Read failures are returned as RetCIOError, decode failures as RetCFormatError.
func ReadRecords(r io.Reader, s serializer.IRosterSerializer) ([]roster.Student, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, WrapError(RetCIOError, "unable to read records", err)
	}

	var students []roster.Student
	if err := s.Deserialize(data, &students); err != nil {
		return nil, WrapError(RetCFormatError, "invalid "+s.Name()+" data", err)
	}

	Logger.Debugf("read %d records (%d bytes, %s)", len(students), len(data), s.Name())
	return students, nil
}
