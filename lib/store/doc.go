// Package store provides the interface for holding an ordered collection of
// student records together with whole-collection persistence and unified error
// handling.
//
// The package focuses on:
//   - A unified interface (IStore) for record operations across different backends
//   - Structured errors that let callers tell I/O problems from corrupt data
//
// Key Components:
//
//   - IStore Interface: Add, Remove, FindByRollNumber, ListAll, Save, Load and Info.
//     Records keep their insertion order. Roll numbers are lookup keys but are not
//     required to be unique: FindByRollNumber returns the first match and Remove
//     removes every match. Removing an unknown roll number is not an error.
//
//   - Error System: Every failure is returned as *Error carrying a RetCode.
//     RetCIOError means the byte stream could not be read or written,
//     RetCFormatError means the bytes were read but are not a record sequence,
//     RetCValidationError is reserved for input checks done by callers.
//     The helpers IsIOError, IsFormatError and IsValidationError inspect an error.
//
//   - Persistence Helpers: WriteRecords and ReadRecords implement the common
//     serialize-then-write and read-then-decode steps for implementations.
//     SaveFile and LoadFile bind a store to a file path, acquiring and releasing
//     the file within the call.
//
// Implementations:
//
//	- Local Store (lstore): An in-memory slice of records. Save and Load go through
//	  a pluggable serializer. Available in "github.com/ValentinKolb/roster/lib/store/lstore".
//
//	- SQL Store (sqlstore): Records kept in a SQL table through gorm (sqlite or
//	  postgres). Load replaces all rows in one transaction.
//	  Available in "github.com/ValentinKolb/roster/lib/store/sqlstore".
//
//	- Instrumented Store (instrumented): A decorator around any IStore that counts
//	  operations and times persistence.
//	  Available in "github.com/ValentinKolb/roster/lib/store/instrumented".
//
// None of the implementations are safe for concurrent use. A store is meant to be
// owned by a single caller.
package store
