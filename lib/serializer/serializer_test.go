package serializer

import (
	"encoding/binary"
	"hash/crc32"
	"reflect"
	"strings"
	"testing"

	"github.com/ValentinKolb/roster/lib/roster"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRosterSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
	"YAML":   NewYAMLSerializer,
}

// testRosters creates a set of rosters with different shapes
func testRosters() map[string][]roster.Student {
	return map[string][]roster.Student{
		"Empty": {},
		"Single": {
			roster.New("Alice", "R1", "A"),
		},
		"Ordered": {
			roster.New("Bob", "R2", "B"),
			roster.New("Alice", "R1", "A"),
			roster.New("Carol", "R3", "C"),
		},
		"DuplicateRollNumbers": {
			roster.New("Alice", "R1", "A"),
			roster.New("Alicia", "R1", "B"),
		},
		"EmptyFields": {
			roster.New("", "", ""),
		},
		"Unicode": {
			roster.New("Zoë Ångström", "R-ß-7", "A+"),
			roster.New("山田 太郎", "ロール1", "優"),
		},
		"Whitespace": {
			roster.New(" leading", "trailing ", "tab\there\nnewline"),
		},
	}
}

// TestSerializerRoundTrip tests that rosters can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for rosterName, students := range testRosters() {
				data, err := serializer.Serialize(students)
				if err != nil {
					t.Errorf("Failed to serialize roster %s: %v", rosterName, err)
					continue
				}

				var result []roster.Student
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize roster %s: %v", rosterName, err)
					continue
				}

				if !reflect.DeepEqual(students, result) {
					t.Errorf("Roster %s doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						rosterName, students, result)
				}
			}
		})
	}
}

// TestSerializeNil tests that a nil roster is encoded as an empty one
func TestSerializeNil(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			data, err := serializer.Serialize(nil)
			if err != nil {
				t.Fatalf("Failed to serialize nil roster: %v", err)
			}

			var result []roster.Student
			if err := serializer.Deserialize(data, &result); err != nil {
				t.Fatalf("Failed to deserialize nil roster: %v", err)
			}

			if result == nil || len(result) != 0 {
				t.Errorf("Expected empty non-nil roster, got %#v", result)
			}
		})
	}
}

// TestDeserializeLeavesTargetOnError tests that a failed decode never touches the target
func TestDeserializeLeavesTargetOnError(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()
			original := []roster.Student{roster.New("Keep", "K1", "A")}
			target := original

			if err := serializer.Deserialize([]byte("\x00\x01garbage{["), &target); err == nil {
				t.Fatalf("Expected error for garbage input")
			}

			if !reflect.DeepEqual(original, target) {
				t.Errorf("Target modified on error: %+v", target)
			}
		})
	}
}

// TestCrossFormatRejection tests that a serializer rejects the output of the others
func TestCrossFormatRejection(t *testing.T) {
	students := []roster.Student{roster.New("Alice", "R1", "A")}

	for encName, encFactory := range testSerializers {
		data, err := encFactory().Serialize(students)
		if err != nil {
			t.Fatalf("Failed to serialize with %s: %v", encName, err)
		}

		for decName, decFactory := range testSerializers {
			if decName == encName {
				continue
			}
			// JSON is a subset of YAML
			if encName == "JSON" && decName == "YAML" {
				continue
			}

			t.Run(encName+"->"+decName, func(t *testing.T) {
				var result []roster.Student
				if err := decFactory().Deserialize(data, &result); err == nil {
					t.Errorf("Expected %s to reject %s data, got %+v", decName, encName, result)
				}
			})
		}
	}
}

// TestRegistry tests lookup of the built-in serializers
func TestRegistry(t *testing.T) {
	want := []string{"binary", "gob", "json", "yaml"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	for _, name := range want {
		s, err := Get(name)
		if err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
			continue
		}
		if s.Name() != name {
			t.Errorf("Get(%q).Name() = %q", name, s.Name())
		}
	}

	if _, err := Get("xml"); err == nil {
		t.Errorf("Expected error for unknown serializer")
	}
}

// TestBinaryLayout tests the exact byte layout of the binary format
func TestBinaryLayout(t *testing.T) {
	data, err := NewBinarySerializer().Serialize([]roster.Student{roster.New("Al", "R1", "A")})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	expectedLen := headerSize + (4 + 2) + (4 + 2) + (4 + 1) + checksumSize
	if len(data) != expectedLen {
		t.Fatalf("Expected %d bytes, got %d", expectedLen, len(data))
	}

	if string(data[:len(magicNum)]) != magicNum {
		t.Errorf("Magic number mismatch: %q", data[:len(magicNum)])
	}
	if data[len(magicNum)] != binaryVersion {
		t.Errorf("Version mismatch: %d", data[len(magicNum)])
	}
	if count := binary.BigEndian.Uint32(data[8:12]); count != 1 {
		t.Errorf("Count mismatch: %d", count)
	}
	if nameLen := binary.BigEndian.Uint32(data[12:16]); nameLen != 2 {
		t.Errorf("Name length mismatch: %d", nameLen)
	}
	if string(data[16:18]) != "Al" {
		t.Errorf("Name mismatch: %q", data[16:18])
	}

	body := data[:len(data)-checksumSize]
	if crc := binary.BigEndian.Uint32(data[len(data)-checksumSize:]); crc != crc32.ChecksumIEEE(body) {
		t.Errorf("Checksum mismatch")
	}
}

// withChecksum appends a valid checksum so that tests reach the record parser
func withChecksum(body []byte) []byte {
	out := append([]byte{}, body...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(body))
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	valid, err := serializer.Serialize([]roster.Student{roster.New("Alice", "R1", "A")})
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}

	flipped := append([]byte{}, valid...)
	flipped[headerSize+5] ^= 0xFF

	header := func(count uint32) []byte {
		b := append([]byte(magicNum), binaryVersion)
		return binary.BigEndian.AppendUint32(b, count)
	}

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte("ROSTER"),
			expectError: true,
		},
		{
			name:        "Wrong magic number",
			data:        withChecksum(append([]byte("MAPLEDB"), 1, 0, 0, 0, 0)),
			expectError: true,
		},
		{
			name:        "Unsupported version",
			data:        withChecksum(append([]byte(magicNum), 9, 0, 0, 0, 0)),
			expectError: true,
		},
		{
			name:        "Valid empty roster",
			data:        withChecksum(header(0)),
			expectError: false,
		},
		{
			name:        "Checksum mismatch",
			data:        flipped,
			expectError: true,
		},
		{
			name:        "Truncated",
			data:        valid[:len(valid)-6],
			expectError: true,
		},
		{
			name:        "Count exceeds data",
			data:        withChecksum(header(1 << 30)),
			expectError: true,
		},
		{
			name:        "Invalid length for name",
			data:        withChecksum(append(header(1), 0, 0, 0, 5, 'a', 'b', 'c', 0, 0, 0, 0)),
			expectError: true,
		},
		{
			name:        "Trailing bytes",
			data:        withChecksum(append(header(0), 0xAA)),
			expectError: true,
		},
		{
			name:        "Invalid UTF-8",
			data:        withChecksum(append(header(1), 0, 0, 0, 1, 0xFF, 0, 0, 0, 0, 0, 0, 0, 0)),
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var students []roster.Student
			err := serializer.Deserialize(tc.data, &students)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}

// TestInvalidTextData tests that the text formats reject values that are not record sequences
func TestInvalidTextData(t *testing.T) {
	validJSON := `{"version":1,"count":1,"students":[{"name":"Alice","roll_number":"R1","grade":"A"}]}`
	validYAML := "version: 1\ncount: 1\nstudents:\n  - name: Alice\n    roll_number: R1\n    grade: A\n"

	testCases := []struct {
		name       string
		serializer IRosterSerializer
		data       string
	}{
		{"JSON null", NewJSONSerializer(), "null"},
		{"JSON bare array", NewJSONSerializer(), `[{"name":"Alice","roll_number":"R1","grade":"A"}]`},
		{"JSON unknown field", NewJSONSerializer(), `{"version":1,"count":1,"students":[{"name":"Alice","roll_number":"R1","grade":"A","age":3}]}`},
		{"JSON wrong field type", NewJSONSerializer(), `{"version":1,"count":1,"students":[{"name":1,"roll_number":"R1","grade":"A"}]}`},
		{"JSON trailing data", NewJSONSerializer(), validJSON + ` []`},
		{"JSON wrong version", NewJSONSerializer(), `{"version":2,"count":0,"students":[]}`},
		{"JSON missing count", NewJSONSerializer(), `{"version":1,"students":[]}`},
		{"JSON missing students", NewJSONSerializer(), `{"version":1,"count":0}`},
		{"JSON count mismatch", NewJSONSerializer(), `{"version":1,"count":2,"students":[{"name":"Alice","roll_number":"R1","grade":"A"}]}`},
		{"JSON empty and null records", NewJSONSerializer(), `{"version":1,"count":2,"students":[{}, null]}`},
		{"JSON missing key", NewJSONSerializer(), `{"version":1,"count":1,"students":[{"name":"Alice","roll_number":"R1"}]}`},
		{"JSON null field", NewJSONSerializer(), `{"version":1,"count":1,"students":[{"name":"Alice","roll_number":null,"grade":"A"}]}`},
		{"YAML empty", NewYAMLSerializer(), ""},
		{"YAML bare sequence", NewYAMLSerializer(), "- name: Alice\n  roll_number: R1\n  grade: A\n"},
		{"YAML unknown field", NewYAMLSerializer(), validYAML + "    age: 3\n"},
		{"YAML null", NewYAMLSerializer(), "~\n"},
		{"YAML trailing document", NewYAMLSerializer(), validYAML + "---\ngarbage: [\n"},
		{"YAML second roster", NewYAMLSerializer(), validYAML + "---\n" + validYAML},
		{"YAML count mismatch", NewYAMLSerializer(), strings.Replace(validYAML, "count: 1", "count: 3", 1)},
		{"YAML null record", NewYAMLSerializer(), "version: 1\ncount: 1\nstudents:\n  - ~\n"},
		{"YAML missing key", NewYAMLSerializer(), "version: 1\ncount: 1\nstudents:\n  - name: Alice\n    grade: A\n"},
		{"YAML empty value", NewYAMLSerializer(), strings.Replace(validYAML, "grade: A", "grade:", 1)},
		{"GOB garbage", NewGOBSerializer(), strings.Repeat("x", 32)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var students []roster.Student
			if err := tc.serializer.Deserialize([]byte(tc.data), &students); err == nil {
				t.Errorf("Expected error but got %+v", students)
			}
		})
	}
}

// TestTruncatedData tests that every prefix of a serialized roster is rejected
func TestTruncatedData(t *testing.T) {
	students := []roster.Student{
		roster.New("Alice", "R1", "A"),
		roster.New("Bob", "R2", "B"),
		roster.New("Carol", "R3", "C"),
	}

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()
			data, err := serializer.Serialize(students)
			if err != nil {
				t.Fatalf("Failed to serialize: %v", err)
			}

			// cut at every record boundary and in between
			for n := 0; n < len(data); n++ {
				prefix := data[:n]
				// text formats may drop trailing whitespace without losing data
				if strings.TrimSpace(string(prefix)) == strings.TrimSpace(string(data)) {
					continue
				}

				var result []roster.Student
				if err := serializer.Deserialize(prefix, &result); err == nil {
					t.Fatalf("Expected error for %d of %d bytes, got %+v", n, len(data), result)
				}
			}
		})
	}
}
