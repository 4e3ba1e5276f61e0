// Package testing provides a standardised test suite for record stores that
// satisfy the store.IStore interface.
//
// Every implementation runs the same suite, which checks ordering, removal,
// lookup of duplicates, round-tripping through Save and Load, wholesale replace
// on Load and the error codes of failed persistence.
//
// Example usage:
//
//	factory := func() store.IStore {
//		return NewMyStore()
//	}
//
//	storetesting.RunStoreTests(t, "MyStore", factory)
package testing
