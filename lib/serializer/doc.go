// Package serializer provides whole-roster serialization for the student stores.
// It defines a common interface and multiple implementations that turn a complete
// record sequence into bytes and back.
//
// The package focuses on:
//   - Providing a consistent interface for different serialization formats
//   - Typed decoding: every implementation either yields a []roster.Student or an error
//   - Leaving the caller's data untouched when decoding fails
//
// Key Components:
//
//   - IRosterSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: The default on-disk format. A magic number and version
//     header, a record count, length-prefixed UTF-8 fields and a trailing CRC32.
//     Truncated, corrupted or foreign files are rejected before any record is returned.
//
//   - gobSerializerImpl: Go's gob encoding wrapped in a versioned envelope.
//
//   - jsonSerializerImpl: JSON array of objects. Unknown fields are rejected.
//
//   - yamlSerializerImpl: YAML sequence of mappings. Unknown fields are rejected.
//
//   - Registry: serializers are registered by name (binary, json, gob, yaml) and
//     looked up with Get. The CLI uses the registry to resolve the --serializer flag.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use.
//	The registry is backed by a concurrent map.
//
// Usage:
//
//	s, err := serializer.Get("binary")
//	data, err := s.Serialize(students)
//	// ... write data ...
//	var loaded []roster.Student
//	err = s.Deserialize(data, &loaded)
package serializer
