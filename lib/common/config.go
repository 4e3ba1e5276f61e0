package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Backends
// --------------------------------------------------------------------------

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Backends lists all supported store backends
var Backends = []string{BackendMemory, BackendSQLite, BackendPostgres}

// --------------------------------------------------------------------------
// Configuration struct
// --------------------------------------------------------------------------

// Config holds the settings of the roster cli
type Config struct {
	// DataFile is the file the memory backend is loaded from and saved to
	DataFile string
	// Serializer is the name of the record serializer used for DataFile
	Serializer string

	// Backend selects the store implementation
	Backend string
	// DSN is the sqlite path or postgres connection string
	DSN string

	// Logging configuration
	LogLevel string
}

// IsPersistent reports whether the backend persists on its own.
// For the memory backend the cli has to load and save DataFile.
func (c *Config) IsPersistent() bool {
	return c.Backend != BackendMemory
}

// Validate checks that the backend is known
func (c *Config) Validate() error {
	for _, b := range Backends {
		if c.Backend == b {
			return nil
		}
	}
	return fmt.Errorf("invalid backend: %s. must be one of %s", c.Backend, strings.Join(Backends, ", "))
}

// String returns a formatted string representation of the configuration
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Store")
	addField("Backend", c.Backend)
	if c.IsPersistent() {
		addField("DSN", redactDSN(c.DSN))
	} else {
		addField("Data File", c.DataFile)
		addField("Serializer", c.Serializer)
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// redactDSN hides the password of a postgres key/value or url dsn
func redactDSN(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		rest := dsn[i+3:]
		at := strings.LastIndex(rest, "@")
		colon := strings.Index(rest, ":")
		if at >= 0 && colon >= 0 && colon < at {
			return dsn[:i+3] + rest[:colon] + ":****" + rest[at:]
		}
		return dsn
	}

	fields := strings.Fields(dsn)
	for i, f := range fields {
		if strings.HasPrefix(f, "password=") {
			fields[i] = "password=****"
		}
	}
	return strings.Join(fields, " ")
}
