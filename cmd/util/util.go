package util

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/ValentinKolb/roster/lib/common"
	"github.com/ValentinKolb/roster/lib/serializer"
	"github.com/ValentinKolb/roster/lib/store"
	"github.com/ValentinKolb/roster/lib/store/instrumented"
	"github.com/ValentinKolb/roster/lib/store/lstore"
	"github.com/ValentinKolb/roster/lib/store/sqlstore"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cli")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// Messages shown to the user
const (
	MsgAdded          = "Student added successfully!"
	MsgRemoved        = "Student removed successfully!"
	MsgNotFound       = "No student found with Roll Number: "
	MsgSaved          = "Data saved to file."
	MsgLoaded         = "Data loaded from file."
	MsgSaveFailed     = "Error saving data to file."
	MsgLoadFailed     = "Error loading data from file."
	MsgInvalidData    = "Invalid data in file."
	MsgFieldsRequired = "All fields are required!"
	MsgRollRequired   = "Roll Number is required!"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Configuration
// --------------------------------------------------------------------------

// SetupStoreFlags adds the store and logging flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "file"
	cmd.PersistentFlags().String(key, "students.dat", WrapString("The data file of the memory backend, also the default path of save and load in the shell"))

	key = "serializer"
	cmd.PersistentFlags().String(key, "binary", WrapString(fmt.Sprintf("The format of the data file (%s)", strings.Join(serializer.Names(), ", "))))

	key = "backend"
	cmd.PersistentFlags().String(key, common.BackendMemory, WrapString(fmt.Sprintf("The store backend to use (%s)", strings.Join(common.Backends, ", "))))

	key = "dsn"
	cmd.PersistentFlags().String(key, "students.db", WrapString("The sqlite database file or the postgres connection string (ignored for the memory backend)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("The log level (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables and .env files
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("roster")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetConfig reads the configuration from viper
func GetConfig() *common.Config {
	return &common.Config{
		DataFile:   viper.GetString("file"),
		Serializer: viper.GetString("serializer"),
		Backend:    viper.GetString("backend"),
		DSN:        viper.GetString("dsn"),
		LogLevel:   viper.GetString("log-level"),
	}
}

// Setup binds the flags of cmd, reads the configuration and initializes the loggers
func Setup(cmd *cobra.Command) (*common.Config, error) {
	if err := BindCommandFlags(cmd); err != nil {
		return nil, err
	}

	config := GetConfig()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := common.InitLoggers(*config); err != nil {
		return nil, err
	}
	return config, nil
}

// --------------------------------------------------------------------------
// Store
// --------------------------------------------------------------------------

// GetSerializer creates the serializer with the given name
func GetSerializer(name string) (serializer.IRosterSerializer, error) {
	s, err := serializer.Get(name)
	if err != nil {
		return nil, store.WrapError(store.RetCUnsupportedOperation, "unknown format", err)
	}
	return s, nil
}

// OpenStore creates the store selected by the configuration.
// The memory backend starts empty, use LoadDataFile to fill it.
func OpenStore(config *common.Config) (*instrumented.Store, error) {
	s, err := GetSerializer(config.Serializer)
	if err != nil {
		return nil, err
	}

	var inner store.IStore
	switch config.Backend {
	case common.BackendMemory:
		inner = lstore.NewLocalStore(s)
	case common.BackendSQLite, common.BackendPostgres:
		dialector, err := sqlstore.Dialector(config.Backend, config.DSN)
		if err != nil {
			return nil, err
		}
		if inner, err = sqlstore.NewSQLStore(dialector, s); err != nil {
			return nil, err
		}
	default:
		return nil, config.Validate()
	}

	Logger.Infof("opened %s store", config.Backend)
	return instrumented.NewInstrumentedStore(inner), nil
}

// LoadDataFile fills a memory backed store from the data file.
// A missing data file is an empty roster. Persistent backends are left untouched.
func LoadDataFile(s store.IStore, config *common.Config) error {
	if config.IsPersistent() {
		return nil
	}

	err := store.LoadFile(s, config.DataFile)
	if errors.Is(err, fs.ErrNotExist) {
		Logger.Infof("data file %s does not exist, starting with an empty roster", config.DataFile)
		return nil
	}
	return err
}

// SaveDataFile writes a memory backed store to the data file.
// It reports whether anything was written.
func SaveDataFile(s store.IStore, config *common.Config) (bool, error) {
	if config.IsPersistent() {
		return false, nil
	}
	return true, store.SaveFile(s, config.DataFile)
}

// --------------------------------------------------------------------------
// Input and Output
// --------------------------------------------------------------------------

// ValidateInput checks that all fields of a new student are set
func ValidateInput(name, rollNumber, grade string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(rollNumber) == "" || strings.TrimSpace(grade) == "" {
		return store.NewError(store.RetCValidationError, MsgFieldsRequired)
	}
	return nil
}

// ValidateRollNumber checks the roll number given to remove and search
func ValidateRollNumber(rollNumber string) error {
	if strings.TrimSpace(rollNumber) == "" {
		return store.NewError(store.RetCValidationError, MsgRollRequired)
	}
	return nil
}

// SaveMessage returns the text shown to the user after a failed save
func SaveMessage(err error) string {
	if store.IsIOError(err) {
		return MsgSaveFailed
	}
	return Message(err)
}

// LoadMessage returns the text shown to the user after a failed load
func LoadMessage(err error) string {
	switch {
	case store.IsFormatError(err):
		return MsgInvalidData
	case store.IsIOError(err):
		return MsgLoadFailed
	default:
		return Message(err)
	}
}

// SaveError prefixes err with the save message if the file could not be written
func SaveError(err error) error {
	if store.IsIOError(err) {
		return fmt.Errorf("%s %w", MsgSaveFailed, err)
	}
	return err
}

// LoadError prefixes err with the load message if the file could not be read or decoded
func LoadError(err error) error {
	if store.IsIOError(err) || store.IsFormatError(err) {
		return fmt.Errorf("%s %w", LoadMessage(err), err)
	}
	return err
}

// Message returns the text shown to the user for err
func Message(err error) string {
	var storeErr *store.Error
	if errors.As(err, &storeErr) && storeErr.Code == store.RetCValidationError {
		return storeErr.Msg
	}
	return "Error: " + err.Error()
}
