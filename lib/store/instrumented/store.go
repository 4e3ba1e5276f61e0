package instrumented

import (
	"fmt"
	"io"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/ValentinKolb/roster/lib/store"
	gometrics "github.com/rcrowley/go-metrics"
)

// Operation names used as metric labels
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpFind   = "find"
	OpList   = "list"
	OpSave   = "save"
	OpLoad   = "load"
	OpInfo   = "info"
)

// Store wraps an IStore and records metrics for every call.
// Counters and the record gauge are kept in a VictoriaMetrics set, the latency
// of Save and Load in a go-metrics registry.
type Store struct {
	inner  store.IStore
	set    *vm.Set
	timers gometrics.Registry
}

// NewInstrumentedStore wraps inner. Each instance keeps its own metrics.
func NewInstrumentedStore(inner store.IStore) *Store {
	s := &Store{
		inner:  inner,
		set:    vm.NewSet(),
		timers: gometrics.NewRegistry(),
	}

	s.set.NewGauge("roster_records", func() float64 {
		info, err := s.inner.Info()
		if err != nil {
			return -1
		}
		return float64(info.Records)
	})

	return s
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *Store) Add(student roster.Student) error {
	return s.observe(OpAdd, s.inner.Add(student))
}

func (s *Store) Remove(rollNumber string) error {
	return s.observe(OpRemove, s.inner.Remove(rollNumber))
}

func (s *Store) FindByRollNumber(rollNumber string) (roster.Student, bool, error) {
	student, found, err := s.inner.FindByRollNumber(rollNumber)
	if err == nil && !found {
		s.set.GetOrCreateCounter(`roster_find_misses_total`).Inc()
	}
	return student, found, s.observe(OpFind, err)
}

func (s *Store) ListAll() ([]roster.Student, error) {
	students, err := s.inner.ListAll()
	return students, s.observe(OpList, err)
}

func (s *Store) Save(w io.Writer) error {
	defer s.Timer(OpSave).UpdateSince(time.Now())
	return s.observe(OpSave, s.inner.Save(w))
}

func (s *Store) Load(r io.Reader) error {
	defer s.Timer(OpLoad).UpdateSince(time.Now())
	return s.observe(OpLoad, s.inner.Load(r))
}

func (s *Store) Info() (store.StoreInfo, error) {
	info, err := s.inner.Info()
	return info, s.observe(OpInfo, err)
}

func (s *Store) Close() error {
	s.timers.UnregisterAll()
	return s.inner.Close()
}

// --------------------------------------------------------------------------
// Metrics
// --------------------------------------------------------------------------

// Calls returns how often op was called
func (s *Store) Calls(op string) uint64 {
	return s.set.GetOrCreateCounter(callsName(op)).Get()
}

// Errors returns how often op failed with the given code
func (s *Store) Errors(op string, code store.RetCode) uint64 {
	return s.set.GetOrCreateCounter(errorsName(op, code)).Get()
}

// Misses returns how many lookups found no record
func (s *Store) Misses() uint64 {
	return s.set.GetOrCreateCounter(`roster_find_misses_total`).Get()
}

// Timer returns the latency timer of op
func (s *Store) Timer(op string) gometrics.Timer {
	return gometrics.GetOrRegisterTimer("roster."+op, s.timers)
}

// WriteMetrics writes all counters in Prometheus text format followed by
// the save and load latency summary.
func (s *Store) WriteMetrics(w io.Writer) {
	s.set.WritePrometheus(w)
	gometrics.WriteOnce(s.timers, w)
}

// observe counts a call of op and its error (if any) and returns err unchanged
func (s *Store) observe(op string, err error) error {
	s.set.GetOrCreateCounter(callsName(op)).Inc()
	if err != nil {
		code := store.CodeOf(err)
		s.set.GetOrCreateCounter(errorsName(op, code)).Inc()
		store.Logger.Debugf("%s failed (%s): %v", op, code, err)
	}
	return err
}

func callsName(op string) string {
	return fmt.Sprintf(`roster_operations_total{op=%q}`, op)
}

func errorsName(op string, code store.RetCode) string {
	return fmt.Sprintf(`roster_operation_errors_total{op=%q,code=%q}`, op, code.String())
}
