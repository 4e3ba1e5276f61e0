package lstore

import (
	"io"

	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/ValentinKolb/roster/lib/serializer"
	"github.com/ValentinKolb/roster/lib/store"
)

const backendName = "memory"

type storeImpl struct {
	students   []roster.Student
	serializer serializer.IRosterSerializer
}

// NewLocalStore creates a new local store instance.
// The records are held in memory, Save and Load use the given serializer
// (the binary serializer if nil).
func NewLocalStore(s serializer.IRosterSerializer) store.IStore {
	if s == nil {
		s = serializer.NewBinarySerializer()
	}
	return &storeImpl{
		students:   make([]roster.Student, 0),
		serializer: s,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Add(student roster.Student) error {
	s.students = append(s.students, student)
	return nil
}

func (s *storeImpl) Remove(rollNumber string) error {
	// filter in place, keeping the order of the remaining records
	kept := s.students[:0]
	for _, student := range s.students {
		if student.RollNumber != rollNumber {
			kept = append(kept, student)
		}
	}

	// clear the tail so removed records are not retained by the backing array
	clear(s.students[len(kept):])
	s.students = kept
	return nil
}

func (s *storeImpl) FindByRollNumber(rollNumber string) (roster.Student, bool, error) {
	for _, student := range s.students {
		if student.RollNumber == rollNumber {
			return student, true, nil
		}
	}
	return roster.Student{}, false, nil
}

func (s *storeImpl) ListAll() ([]roster.Student, error) {
	result := make([]roster.Student, len(s.students))
	copy(result, s.students)
	return result, nil
}

func (s *storeImpl) Save(w io.Writer) error {
	return store.WriteRecords(w, s.serializer, s.students)
}

func (s *storeImpl) Load(r io.Reader) error {
	students, err := store.ReadRecords(r, s.serializer)
	if err != nil {
		return err
	}

	// wholesale replace only after the complete sequence was decoded
	s.students = students
	return nil
}

func (s *storeImpl) Info() (store.StoreInfo, error) {
	return store.NewStoreInfo(backendName, s.serializer.Name(), s.students), nil
}

func (s *storeImpl) Close() error {
	return nil
}
