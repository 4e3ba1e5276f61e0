// Package roster defines the record type held by the student stores.
//
// A Student is a plain value with three string fields. Stores copy Students in
// and out, so callers can keep and modify the values they receive without
// affecting stored data.
package roster
