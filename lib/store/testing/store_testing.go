package testing

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/ValentinKolb/roster/lib/store"
)

// StoreFactory is a function that creates a new, empty instance of an IStore implementation
type StoreFactory func() store.IStore

// RunStoreTests runs a comprehensive test suite for an IStore implementation.
func RunStoreTests(t *testing.T, name string, factory StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("AddKeepsOrder", func(t *testing.T) {
			testAddKeepsOrder(t, open(t, factory))
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, open(t, factory))
		})

		t.Run("RemoveMissing", func(t *testing.T) {
			testRemoveMissing(t, open(t, factory))
		})

		t.Run("FindDuplicates", func(t *testing.T) {
			testFindDuplicates(t, open(t, factory))
		})

		t.Run("ListAllIsCopy", func(t *testing.T) {
			testListAllIsCopy(t, open(t, factory))
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("LoadReplaces", func(t *testing.T) {
			testLoadReplaces(t, factory)
		})

		t.Run("LoadCorrupt", func(t *testing.T) {
			testLoadCorrupt(t, open(t, factory))
		})

		t.Run("ReadWriteErrors", func(t *testing.T) {
			testReadWriteErrors(t, open(t, factory))
		})

		t.Run("Files", func(t *testing.T) {
			testFiles(t, factory)
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, open(t, factory))
		})

		t.Run("Scenario", func(t *testing.T) {
			testScenario(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// open creates a new store that is closed when the test finishes
func open(t *testing.T, factory StoreFactory) store.IStore {
	t.Helper()
	s := factory()
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Unexpected error during Close: %v", err)
		}
	})
	return s
}

var errInjected = errors.New("injected failure")

// failingWriter fails every write
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errInjected }

// failingReader returns some bytes and then fails
type failingReader struct{ done bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errInjected
	}
	r.done = true
	return copy(p, "ROSTER"), nil
}

func mustAdd(t *testing.T, s store.IStore, students ...roster.Student) {
	t.Helper()
	for _, student := range students {
		if err := s.Add(student); err != nil {
			t.Fatalf("Unexpected error during Add(%v): %v", student, err)
		}
	}
}

func mustList(t *testing.T, s store.IStore) []roster.Student {
	t.Helper()
	students, err := s.ListAll()
	if err != nil {
		t.Fatalf("Unexpected error during ListAll: %v", err)
	}
	return students
}

func expectList(t *testing.T, s store.IStore, expected []roster.Student) {
	t.Helper()
	actual := mustList(t, s)
	if len(actual) != len(expected) {
		t.Fatalf("Expected %d records, got %d: %v", len(expected), len(actual), actual)
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Errorf("Record %d: expected %v, got %v", i, expected[i], actual[i])
		}
	}
}

func expectCode(t *testing.T, err error, code store.RetCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error with code %s, got nil", code)
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected *store.Error, got %T: %v", err, err)
	}
	if storeErr.Code != code {
		t.Errorf("Expected code %s, got %s (%v)", code, storeErr.Code, err)
	}
}

func sampleRoster(n int) []roster.Student {
	students := make([]roster.Student, n)
	for i := range students {
		students[i] = roster.New(
			fmt.Sprintf("student-%d", i),
			fmt.Sprintf("R%d", i),
			string(rune('A'+i%4)),
		)
	}
	return students
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testAddKeepsOrder(t *testing.T, s store.IStore) {
	expectList(t, s, []roster.Student{})

	students := sampleRoster(50)
	// shuffle roll numbers so order cannot come from sorting by key
	students[3], students[40] = students[40], students[3]

	mustAdd(t, s, students...)
	expectList(t, s, students)
}

func testRemove(t *testing.T, s store.IStore) {
	alice := roster.New("Alice", "R1", "A")
	bob := roster.New("Bob", "R2", "B")
	alice2 := roster.New("Alice Two", "R1", "C")
	carol := roster.New("Carol", "R3", "A")

	mustAdd(t, s, alice, bob, alice2, carol)

	if err := s.Remove("R1"); err != nil {
		t.Fatalf("Unexpected error during Remove: %v", err)
	}

	// every match is removed, the remaining order is kept
	expectList(t, s, []roster.Student{bob, carol})

	if _, found, err := s.FindByRollNumber("R1"); err != nil || found {
		t.Errorf("Expected R1 to be absent after Remove, found=%v err=%v", found, err)
	}
}

func testRemoveMissing(t *testing.T, s store.IStore) {
	if err := s.Remove("nothing"); err != nil {
		t.Errorf("Remove on empty store returned error: %v", err)
	}

	students := sampleRoster(3)
	mustAdd(t, s, students...)

	if err := s.Remove("not-there"); err != nil {
		t.Errorf("Remove of missing roll number returned error: %v", err)
	}
	expectList(t, s, students)
}

func testFindDuplicates(t *testing.T, s store.IStore) {
	first := roster.New("First", "K", "A")
	second := roster.New("Second", "K", "B")
	mustAdd(t, s, roster.New("Other", "X", "C"), first, second)

	found, ok, err := s.FindByRollNumber("K")
	if err != nil {
		t.Fatalf("Unexpected error during FindByRollNumber: %v", err)
	}
	if !ok {
		t.Fatalf("Expected K to be found")
	}
	if found != first {
		t.Errorf("Expected first inserted record %v, got %v", first, found)
	}

	if _, ok, err := s.FindByRollNumber("missing"); err != nil || ok {
		t.Errorf("Expected missing key to be absent, found=%v err=%v", ok, err)
	}

	// lookups are exact
	if _, ok, _ := s.FindByRollNumber("k"); ok {
		t.Errorf("Expected lookup to be case sensitive")
	}
}

func testListAllIsCopy(t *testing.T, s store.IStore) {
	students := sampleRoster(3)
	mustAdd(t, s, students...)

	first := mustList(t, s)
	first[0].Name = "changed"
	_ = append(first[:1], roster.New("x", "y", "z"))

	// restartable and unaffected by changes to a previous result
	expectList(t, s, students)
	second := mustList(t, s)
	if !reflect.DeepEqual(second, mustList(t, s)) {
		t.Errorf("Consecutive ListAll calls differ")
	}
}

func testSaveLoad(t *testing.T, factory StoreFactory) {
	for _, n := range []int{0, 1, 1000} {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			original := open(t, factory)
			loaded := open(t, factory)

			students := sampleRoster(n)
			if n > 1 {
				// duplicates must survive the round trip
				students = append(students, roster.New("dup", students[0].RollNumber, "Z"))
			}
			mustAdd(t, original, students...)

			var buf bytes.Buffer
			if err := original.Save(&buf); err != nil {
				t.Fatalf("Unexpected error during Save: %v", err)
			}

			if err := loaded.Load(&buf); err != nil {
				t.Fatalf("Unexpected error during Load: %v", err)
			}

			expectList(t, loaded, students)
			expectList(t, original, students)
		})
	}
}

func testLoadReplaces(t *testing.T, factory StoreFactory) {
	source := open(t, factory)
	target := open(t, factory)

	mustAdd(t, source, roster.New("New", "N1", "A"))
	mustAdd(t, target, sampleRoster(5)...)

	var buf bytes.Buffer
	if err := source.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}

	if err := target.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	expectList(t, target, []roster.Student{roster.New("New", "N1", "A")})

	// store stays fully usable after load
	mustAdd(t, target, roster.New("After", "A1", "B"))
	expectList(t, target, []roster.Student{roster.New("New", "N1", "A"), roster.New("After", "A1", "B")})
}

func testLoadCorrupt(t *testing.T, s store.IStore) {
	students := sampleRoster(4)
	mustAdd(t, s, students...)

	var valid bytes.Buffer
	if err := s.Save(&valid); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}
	truncated := valid.Bytes()[:valid.Len()/2]

	inputs := map[string][]byte{
		"Empty":     {},
		"Garbage":   []byte("\x00\x01\x02 this is not a roster {["),
		"Truncated": truncated,
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			err := s.Load(bytes.NewReader(data))
			expectCode(t, err, store.RetCFormatError)
			expectList(t, s, students)
		})
	}

	// still usable after failures
	mustAdd(t, s, roster.New("Late", "L1", "A"))
	expectList(t, s, append(students, roster.New("Late", "L1", "A")))
}

func testReadWriteErrors(t *testing.T, s store.IStore) {
	students := sampleRoster(2)
	mustAdd(t, s, students...)

	err := s.Save(failingWriter{})
	expectCode(t, err, store.RetCIOError)
	if !errors.Is(err, errInjected) {
		t.Errorf("Expected Save error to wrap the writer error, got %v", err)
	}
	expectList(t, s, students)

	err = s.Load(&failingReader{})
	expectCode(t, err, store.RetCIOError)
	if !errors.Is(err, errInjected) {
		t.Errorf("Expected Load error to wrap the reader error, got %v", err)
	}
	expectList(t, s, students)
}

func testFiles(t *testing.T, factory StoreFactory) {
	dir := t.TempDir()
	path := filepath.Join(dir, "students.dat")

	original := open(t, factory)
	students := sampleRoster(10)
	mustAdd(t, original, students...)

	if err := store.SaveFile(original, path); err != nil {
		t.Fatalf("Unexpected error during SaveFile: %v", err)
	}

	// overwrite an existing file
	if err := store.SaveFile(original, path); err != nil {
		t.Fatalf("Unexpected error during second SaveFile: %v", err)
	}

	loaded := open(t, factory)
	if err := store.LoadFile(loaded, path); err != nil {
		t.Fatalf("Unexpected error during LoadFile: %v", err)
	}
	expectList(t, loaded, students)

	// no temporary files are left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Unexpected error reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the data file in %s, got %d entries", dir, len(entries))
	}

	// missing file
	err = store.LoadFile(loaded, filepath.Join(dir, "missing.dat"))
	expectCode(t, err, store.RetCIOError)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected missing file error to wrap fs.ErrNotExist, got %v", err)
	}
	expectList(t, loaded, students)

	// unwritable destination
	err = store.SaveFile(loaded, filepath.Join(dir, "no-such-dir", "students.dat"))
	expectCode(t, err, store.RetCIOError)
	expectList(t, loaded, students)
}

func testInfo(t *testing.T, s store.IStore) {
	mustAdd(t, s,
		roster.New("Alice", "R1", "A"),
		roster.New("Bob", "R2", "B"),
		roster.New("Alice Again", "R1", "A"),
		roster.New("Bob Again", "R2", "C"),
		roster.New("Bob Third", "R2", "C"),
	)

	info, err := s.Info()
	if err != nil {
		t.Fatalf("Unexpected error during Info: %v", err)
	}

	if info.Records != 5 {
		t.Errorf("Expected 5 records, got %d", info.Records)
	}
	if !reflect.DeepEqual(info.DuplicateRollNumbers, []string{"R1", "R2"}) {
		t.Errorf("Unexpected duplicates: %v", info.DuplicateRollNumbers)
	}
	if !reflect.DeepEqual(info.GradeDistribution, map[string]int{"A": 2, "B": 1, "C": 2}) {
		t.Errorf("Unexpected grade distribution: %v", info.GradeDistribution)
	}
	if info.Backend == "" || info.Serializer == "" {
		t.Errorf("Expected backend and serializer to be set: %+v", info)
	}
}

func testScenario(t *testing.T, factory StoreFactory) {
	s := open(t, factory)
	alice := roster.New("Alice", "R1", "A")
	bob := roster.New("Bob", "R2", "B")

	mustAdd(t, s, alice, bob)
	expectList(t, s, []roster.Student{alice, bob})

	if err := s.Remove("R1"); err != nil {
		t.Fatalf("Unexpected error during Remove: %v", err)
	}
	expectList(t, s, []roster.Student{bob})

	if _, found, _ := s.FindByRollNumber("R1"); found {
		t.Errorf("Expected R1 to be absent")
	}

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}

	fresh := open(t, factory)
	if err := fresh.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}
	expectList(t, fresh, []roster.Student{bob})
}
