package serializer

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"unicode/utf8"

	"github.com/ValentinKolb/roster/lib/roster"
)

// NewBinarySerializer creates a new serializer using the roster file format.
// This is the default on-disk format.
func NewBinarySerializer() IRosterSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRosterSerializer using a length-prefixed binary format
type binarySerializerImpl struct {
}

// File layout (all integers big endian):
//
//	magic   [7]byte "ROSTER\x00"
//	version uint8
//	count   uint32
//	count x { name, rollNumber, grade } each as uint32 length + UTF-8 bytes
//	crc     uint32 (IEEE) over all preceding bytes
const (
	magicNum      = "ROSTER\x00"
	binaryVersion = 1

	headerSize   = len(magicNum) + 1 + 4
	checksumSize = 4
	// three empty strings still need three length prefixes
	minRecordSize = 3 * 4
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRosterSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Name() string {
	return "binary"
}

func (b binarySerializerImpl) Serialize(students []roster.Student) ([]byte, error) {
	result := make([]byte, b.sizeBytes(students))

	// Write header
	pos := copy(result, magicNum)
	result[pos] = binaryVersion
	pos++
	binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(students)))
	pos += 4

	// Write records
	for _, s := range students {
		pos = putString(result, pos, s.Name)
		pos = putString(result, pos, s.RollNumber)
		pos = putString(result, pos, s.Grade)
	}

	// Write checksum
	binary.BigEndian.PutUint32(result[pos:pos+4], crc32.ChecksumIEEE(result[:pos]))

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, students *[]roster.Student) error {
	// Check minimum size (header + checksum)
	if len(data) < headerSize+checksumSize {
		return fmt.Errorf("data too short for roster header")
	}

	if string(data[:len(magicNum)]) != magicNum {
		return fmt.Errorf("invalid file format: magic number mismatch")
	}

	if version := data[len(magicNum)]; version != binaryVersion {
		return fmt.Errorf("unsupported version: %d (expected %d)", version, binaryVersion)
	}

	// Verify checksum before looking at any record
	body := data[:len(data)-checksumSize]
	expected := binary.BigEndian.Uint32(data[len(data)-checksumSize:])
	if actual := crc32.ChecksumIEEE(body); actual != expected {
		return fmt.Errorf("checksum mismatch: got %08x, expected %08x", actual, expected)
	}

	count := binary.BigEndian.Uint32(body[len(magicNum)+1 : headerSize])
	pos := headerSize

	// Reject counts that cannot fit into the remaining bytes before allocating
	if uint64(count)*minRecordSize > uint64(len(body)-pos) {
		return fmt.Errorf("record count %d exceeds data size", count)
	}

	result := make([]roster.Student, 0, count)
	for i := uint32(0); i < count; i++ {
		var s roster.Student
		var err error

		if s.Name, pos, err = readString(body, pos, "name"); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if s.RollNumber, pos, err = readString(body, pos, "roll number"); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if s.Grade, pos, err = readString(body, pos, "grade"); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}

		result = append(result, s)
	}

	if pos != len(body) {
		return fmt.Errorf("%d trailing bytes after last record", len(body)-pos)
	}

	*students = result
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(students []roster.Student) int {
	size := headerSize + checksumSize
	for _, s := range students {
		size += 4 + len(s.Name)       // 4 bytes for length + name
		size += 4 + len(s.RollNumber) // 4 bytes for length + roll number
		size += 4 + len(s.Grade)      // 4 bytes for length + grade
	}
	return size
}

// putString writes a length-prefixed string at pos and returns the new position
func putString(buf []byte, pos int, s string) int {
	binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(len(s)))
	pos += 4
	return pos + copy(buf[pos:], s)
}

// readString reads a length-prefixed string at pos and returns it with the new position
func readString(data []byte, pos int, field string) (string, int, error) {
	if pos+4 > len(data) {
		return "", pos, fmt.Errorf("data too short for %s length", field)
	}

	strLen := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4

	if uint64(pos)+uint64(strLen) > uint64(len(data)) {
		return "", pos, fmt.Errorf("data too short for %s data", field)
	}

	raw := data[pos : pos+int(strLen)]
	if !utf8.Valid(raw) {
		return "", pos, fmt.Errorf("%s is not valid UTF-8", field)
	}

	return string(raw), pos + int(strLen), nil
}
