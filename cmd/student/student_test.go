package student

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/roster/cmd/util"
	"github.com/ValentinKolb/roster/lib/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the student command group with the given data file and arguments
func execute(t *testing.T, file string, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "roster", SilenceUsage: true, SilenceErrors: true}
	util.SetupStoreFlags(root)
	root.AddCommand(StudentCommands)
	defer root.RemoveCommand(StudentCommands)
	defer resetFlags(StudentCommands)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"student", "--file", file}, args...))

	err := root.Execute()
	return out.String(), err
}

// resetFlags restores the defaults of all flags, cobra keeps parsed values between runs
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func dataFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "students.dat")
}

func TestRosterWorkflow(t *testing.T) {
	file := dataFile(t)

	out, err := execute(t, file, "add", "Alice", "R1", "A")
	require.NoError(t, err)
	assert.Contains(t, out, util.MsgAdded)
	assert.Contains(t, out, util.MsgSaved)

	_, err = execute(t, file, "add", "Bob", "R2", "B")
	require.NoError(t, err)

	out, err = execute(t, file, "list")
	require.NoError(t, err)
	assert.Equal(t, "Name: Alice, Roll Number: R1, Grade: A\nName: Bob, Roll Number: R2, Grade: B\n", out)

	out, err = execute(t, file, "search", "R1")
	require.NoError(t, err)
	assert.Equal(t, "Name: Alice, Roll Number: R1, Grade: A\n", out)

	out, err = execute(t, file, "remove", "R1")
	require.NoError(t, err)
	assert.Contains(t, out, util.MsgRemoved)

	out, err = execute(t, file, "search", "R1")
	require.NoError(t, err)
	assert.Equal(t, util.MsgNotFound+"R1\n", out)

	out, err = execute(t, file, "list")
	require.NoError(t, err)
	assert.Equal(t, "Name: Bob, Roll Number: R2, Grade: B\n", out)
}

func TestReadOnlyCommandsDoNotWrite(t *testing.T) {
	file := dataFile(t)

	out, err := execute(t, file, "list")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err), "list must not create the data file")
}

func TestAddRequiresAllFields(t *testing.T) {
	file := dataFile(t)

	_, err := execute(t, file, "add", "Alice", "", "A")
	require.Error(t, err)
	assert.True(t, store.IsValidationError(err))
	assert.Equal(t, util.MsgFieldsRequired, util.Message(err))

	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err))
}

func TestCorruptDataFile(t *testing.T) {
	file := dataFile(t)
	require.NoError(t, os.WriteFile(file, []byte("definitely not a roster"), 0o644))

	_, err := execute(t, file, "list")
	require.Error(t, err)
	assert.True(t, store.IsFormatError(err))
	assert.True(t, strings.HasPrefix(err.Error(), util.MsgInvalidData))

	// the broken file is left alone
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "definitely not a roster", string(data))
}

func TestExportImport(t *testing.T) {
	file := dataFile(t)
	exported := filepath.Join(t.TempDir(), "export.json")

	_, err := execute(t, file, "add", "Alice", "R1", "A")
	require.NoError(t, err)
	_, err = execute(t, file, "add", "Bob", "R2", "B")
	require.NoError(t, err)

	_, err = execute(t, file, "export", "--format", "json", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"roll_number"`)

	_, err = execute(t, file, "remove", "R1")
	require.NoError(t, err)
	_, err = execute(t, file, "remove", "R2")
	require.NoError(t, err)

	out, err := execute(t, file, "import", "--format", "json", exported)
	require.NoError(t, err)
	assert.Contains(t, out, util.MsgLoaded)
	assert.Contains(t, out, util.MsgSaved)

	out, err = execute(t, file, "list")
	require.NoError(t, err)
	assert.Equal(t, "Name: Alice, Roll Number: R1, Grade: A\nName: Bob, Roll Number: R2, Grade: B\n", out)

	// importing with the wrong format keeps the roster
	_, err = execute(t, file, "import", exported)
	require.Error(t, err)
	assert.True(t, store.IsFormatError(err))

	out, err = execute(t, file, "list")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))

	_, err = execute(t, file, "import", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, store.IsIOError(err))
}

func TestInfo(t *testing.T) {
	file := dataFile(t)

	_, err := execute(t, file, "add", "Alice", "R1", "A")
	require.NoError(t, err)
	_, err = execute(t, file, "add", "Alice Again", "R1", "B")
	require.NoError(t, err)

	out, err := execute(t, file, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "binary")
	assert.Contains(t, out, "Duplicate Roll Numbers")
	assert.Contains(t, out, "Grade A")
	assert.Contains(t, out, `roster_operations_total{op="load"} 1`)
}

func TestPerf(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping benchmark run in short mode")
	}

	file := dataFile(t)
	csvPath := filepath.Join(t.TempDir(), "perf.csv")

	out, err := execute(t, file, "perf",
		"--records", "10",
		"--skip", "add,find,find-miss,list,remove,save",
		"--csv", csvPath,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "add                 skipped")
	assert.Contains(t, out, "ops/sec")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(perfTests)+1)
	assert.Equal(t, "Test", rows[0][0])
	assert.Equal(t, "load", rows[len(perfTests)][0])
	assert.Equal(t, "false", rows[len(perfTests)][4])

	// perf never touches the roster
	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveAndSearchRequireRollNumber(t *testing.T) {
	file := dataFile(t)

	_, err := execute(t, file, "add", "Alice", "R1", "A")
	require.NoError(t, err)
	before, err := os.ReadFile(file)
	require.NoError(t, err)

	for _, args := range [][]string{{"remove", ""}, {"remove", "  "}, {"search", ""}} {
		out, err := execute(t, file, args...)
		require.Error(t, err, "%v", args)
		assert.True(t, store.IsValidationError(err))
		assert.Equal(t, util.MsgRollRequired, util.Message(err))
		assert.NotContains(t, out, util.MsgRemoved)
		assert.NotContains(t, out, util.MsgSaved)
	}

	after, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	out, err := execute(t, file, "list")
	require.NoError(t, err)
	assert.Equal(t, "Name: Alice, Roll Number: R1, Grade: A\n", out)
}

func TestStoreReleasedAfterEveryCommand(t *testing.T) {
	file := dataFile(t)
	dsn := filepath.Join(t.TempDir(), "students.db")
	sqlite := []string{"--backend", "sqlite", "--dsn", dsn}

	_, err := execute(t, file, append(sqlite, "add", "Alice", "R1", "A")...)
	require.NoError(t, err)
	assert.Nil(t, rosterStore)

	// failing commands release the store as well
	_, err = execute(t, file, append(sqlite, "add", "Bob", "", "B")...)
	require.Error(t, err)
	assert.Nil(t, rosterStore)

	_, err = execute(t, file, append(sqlite, "import", filepath.Join(t.TempDir(), "missing.dat"))...)
	require.Error(t, err)
	assert.Nil(t, rosterStore)

	out, err := execute(t, file, append(sqlite, "list")...)
	require.NoError(t, err)
	assert.Equal(t, "Name: Alice, Roll Number: R1, Grade: A\n", out)
	assert.Nil(t, rosterStore)

	// the memory data file is never written for the sqlite backend
	_, err = os.Stat(file)
	assert.True(t, os.IsNotExist(err))
}
