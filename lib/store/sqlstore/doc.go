// Package sqlstore implements store.IStore on top of a SQL table using gorm.
// Supported dialects are sqlite and postgres.
//
// Each record is a row in the "students" table. An auto-increment sequence
// column preserves insertion order, so ListAll and FindByRollNumber behave
// exactly like the in-memory store: results are ordered by insertion and
// lookups return the earliest matching row.
//
// Load decodes the complete input first and then deletes and re-inserts all
// rows inside a single transaction. A decode error or a failed transaction
// leaves the table unchanged.
//
// Usage Example:
//
//	dialector, _ := sqlstore.Dialector(sqlstore.DialectSQLite, "students.db")
//	s, err := sqlstore.NewSQLStore(dialector, nil)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
package sqlstore
