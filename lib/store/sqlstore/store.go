package sqlstore

import (
	"fmt"
	"io"

	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/ValentinKolb/roster/lib/serializer"
	"github.com/ValentinKolb/roster/lib/store"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// --------------------------------------------------------------------------
// Dialects
// --------------------------------------------------------------------------

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// loadBatchSize is the number of rows inserted per statement during Load
const loadBatchSize = 500

// Dialector returns the gorm dialector for the given dialect and DSN.
// For sqlite the DSN is a file path (or ":memory:"), for postgres a connection string.
func Dialector(dialect, dsn string) (gorm.Dialector, error) {
	switch dialect {
	case DialectSQLite:
		return sqlite.Open(dsn), nil
	case DialectPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("invalid dialect %s (expected one of: %s, %s)", dialect, DialectSQLite, DialectPostgres)
	}
}

// --------------------------------------------------------------------------
// Table Definition
// --------------------------------------------------------------------------

// studentRow is a single record. Seq is assigned on insert and defines the insertion order.
type studentRow struct {
	Seq        uint64 `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"not null"`
	RollNumber string `gorm:"not null;index"`
	Grade      string `gorm:"not null"`
}

func (studentRow) TableName() string {
	return "students"
}

func toRow(s roster.Student) studentRow {
	return studentRow{Name: s.Name, RollNumber: s.RollNumber, Grade: s.Grade}
}

func (r studentRow) toStudent() roster.Student {
	return roster.New(r.Name, r.RollNumber, r.Grade)
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

type storeImpl struct {
	db         *gorm.DB
	backend    string
	serializer serializer.IRosterSerializer
}

// NewSQLStore creates a store backed by a SQL table.
// The table is created if it does not exist. Save and Load use the given
// serializer (the binary serializer if nil).
func NewSQLStore(dialector gorm.Dialector, s serializer.IRosterSerializer) (store.IStore, error) {
	if s == nil {
		s = serializer.NewBinarySerializer()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, store.WrapError(store.RetCInternalError, "unable to open database", err)
	}

	if dialector.Name() == DialectSQLite {
		// every sqlite connection to ":memory:" is a separate database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, store.WrapError(store.RetCInternalError, "unable to access database", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&studentRow{}); err != nil {
		return nil, store.WrapError(store.RetCInternalError, "unable to migrate database", err)
	}

	store.Logger.Infof("opened %s store", dialector.Name())

	return &storeImpl{
		db:         db,
		backend:    dialector.Name(),
		serializer: s,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Add(student roster.Student) error {
	row := toRow(student)
	if err := s.db.Create(&row).Error; err != nil {
		return store.WrapError(store.RetCInternalError, "unable to add record", err)
	}
	return nil
}

func (s *storeImpl) Remove(rollNumber string) error {
	result := s.db.Where("roll_number = ?", rollNumber).Delete(&studentRow{})
	if result.Error != nil {
		return store.WrapError(store.RetCInternalError, "unable to remove records", result.Error)
	}
	store.Logger.Debugf("removed %d records with roll number %q", result.RowsAffected, rollNumber)
	return nil
}

func (s *storeImpl) FindByRollNumber(rollNumber string) (roster.Student, bool, error) {
	var rows []studentRow
	err := s.db.Where("roll_number = ?", rollNumber).Order("seq").Limit(1).Find(&rows).Error
	if err != nil {
		return roster.Student{}, false, store.WrapError(store.RetCInternalError, "unable to query records", err)
	}
	if len(rows) == 0 {
		return roster.Student{}, false, nil
	}
	return rows[0].toStudent(), true, nil
}

func (s *storeImpl) ListAll() ([]roster.Student, error) {
	var rows []studentRow
	if err := s.db.Order("seq").Find(&rows).Error; err != nil {
		return nil, store.WrapError(store.RetCInternalError, "unable to list records", err)
	}

	students := make([]roster.Student, len(rows))
	for i, row := range rows {
		students[i] = row.toStudent()
	}
	return students, nil
}

func (s *storeImpl) Save(w io.Writer) error {
	students, err := s.ListAll()
	if err != nil {
		return err
	}
	return store.WriteRecords(w, s.serializer, students)
}

func (s *storeImpl) Load(r io.Reader) error {
	students, err := store.ReadRecords(r, s.serializer)
	if err != nil {
		return err
	}

	rows := make([]studentRow, len(students))
	for i, student := range students {
		rows[i] = toRow(student)
	}

	// all rows are replaced in one transaction, a failure keeps the old rows
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&studentRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, loadBatchSize).Error
	})
	if err != nil {
		return store.WrapError(store.RetCInternalError, "unable to replace records", err)
	}

	return nil
}

func (s *storeImpl) Info() (store.StoreInfo, error) {
	students, err := s.ListAll()
	if err != nil {
		return store.StoreInfo{}, err
	}
	return store.NewStoreInfo(s.backend, s.serializer.Name(), students), nil
}

func (s *storeImpl) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return store.WrapError(store.RetCInternalError, "unable to access database", err)
	}
	if err := sqlDB.Close(); err != nil {
		return store.WrapError(store.RetCInternalError, "unable to close database", err)
	}
	return nil
}
