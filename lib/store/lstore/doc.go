// Package lstore implements a local, in-memory record store based on the
// store.IStore interface.
//
// Key Features:
//   - Records are kept in a single slice in insertion order
//   - All queries are linear scans over that slice
//   - Save and Load go through a pluggable serializer.IRosterSerializer
//   - Load decodes the complete input before replacing anything, so a failed
//     load leaves the store exactly as it was
//
// Implementation Details:
//
//   - Remove filters the slice in place and removes every record with the given
//     roll number. Removing an unknown roll number succeeds silently.
//
//   - ListAll returns a copy. Callers may modify the result freely.
//
// Thread Safety:
//
//	The local store is not safe for concurrent use. It is designed to be owned by
//	a single caller, such as one CLI invocation or one interactive shell session.
//
// Usage Example:
//
//	s := lstore.NewLocalStore(serializer.NewBinarySerializer())
//	_ = s.Add(roster.New("Alice", "R1", "A"))
//	student, found, _ := s.FindByRollNumber("R1")
//
//	// persist the whole roster
//	err := store.SaveFile(s, "students.dat")
package lstore
