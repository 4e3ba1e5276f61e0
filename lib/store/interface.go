package store

import (
	"errors"
	"fmt"
	"io"

	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IStore is the interface for an ordered collection of student records.
// Records keep their insertion order, which is also the display order.
// Write operations return only an error (nil on success), read operations return
// the requested data along with an error (nil on success). Returned errors are
// always of type *Error.
type IStore interface {
	// Add appends a record to the end of the sequence.
	// Duplicate roll numbers are accepted.
	Add(student roster.Student) (err error)
	// Remove removes every record with the given roll number.
	// Removing a roll number that does not exist is not an error.
	Remove(rollNumber string) (err error)
	// FindByRollNumber returns the first record (in insertion order) with the given roll number.
	// The boolean return value indicates whether a record was found.
	FindByRollNumber(rollNumber string) (student roster.Student, found bool, err error)
	// ListAll returns a copy of all records in insertion order.
	ListAll() (students []roster.Student, err error)
	// Save writes the complete sequence to w as a single unit.
	// The stored records are never modified by Save.
	Save(w io.Writer) (err error)
	// Load reads a complete sequence from r and replaces the current records with it.
	// On any error the previous records are left unchanged.
	Load(r io.Reader) (err error)
	// Info returns metadata about the store.
	Info() (info StoreInfo, err error)
	// Close releases the resources held by the store.
	Close() (err error)
}

// StoreInfo describes the current state of a store
type StoreInfo struct {
	Backend              string         `json:"backend"`
	Serializer           string         `json:"serializer"`
	Records              int            `json:"records"`
	DuplicateRollNumbers []string       `json:"duplicate_roll_numbers"`
	GradeDistribution    map[string]int `json:"grade_distribution"`
}

// NewStoreInfo computes the record statistics of a StoreInfo from a record sequence
func NewStoreInfo(backend, serializer string, students []roster.Student) StoreInfo {
	info := StoreInfo{
		Backend:              backend,
		Serializer:           serializer,
		Records:              len(students),
		DuplicateRollNumbers: []string{},
		GradeDistribution:    make(map[string]int),
	}

	seen := make(map[string]int, len(students))
	for _, s := range students {
		seen[s.RollNumber]++
		// report each duplicate once, in order of first repetition
		if seen[s.RollNumber] == 2 {
			info.DuplicateRollNumbers = append(info.DuplicateRollNumbers, s.RollNumber)
		}
		info.GradeDistribution[s.Grade]++
	}

	return info
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode),
// an error message and an optional cause.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying cause, may be nil.
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new StoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new StoreError with the given code and message that wraps err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// CodeOf returns the RetCode of err, RetCSuccess for nil and RetCInternalError
// for errors that are not a *Error.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Code
	}
	return RetCInternalError
}

// IsIOError reports whether err is a store error caused by an unreadable or unwritable byte stream
func IsIOError(err error) bool {
	return err != nil && CodeOf(err) == RetCIOError
}

// IsFormatError reports whether err is a store error caused by data that is not a valid record sequence
func IsFormatError(err error) bool {
	return err != nil && CodeOf(err) == RetCFormatError
}

// IsValidationError reports whether err is an input validation error
func IsValidationError(err error) bool {
	return err != nil && CodeOf(err) == RetCValidationError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by the store.
	RetCIOError                             // 3: The byte source or sink could not be read or written.
	RetCFormatError                         // 4: The data read is not a valid record sequence.
	RetCValidationError                     // 5: Input rejected by the presentation layer.
)

// String returns the name of the return code
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCUnsupportedOperation:
		return "UnsupportedOperation"
	case RetCIOError:
		return "IOError"
	case RetCFormatError:
		return "FormatError"
	case RetCValidationError:
		return "ValidationError"
	default:
		return "Unknown"
	}
}
