package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/roster/cmd/util"
	"github.com/ValentinKolb/roster/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()

	config := &common.Config{
		DataFile:   filepath.Join(t.TempDir(), "students.dat"),
		Serializer: "binary",
		Backend:    common.BackendMemory,
		LogLevel:   "warn",
	}
	s, err := util.OpenStore(config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var out bytes.Buffer
	return NewSession(s, config, &out), &out
}

// run executes line and returns the output it produced
func run(t *testing.T, session *Session, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	assert.False(t, session.Execute(line), "%q must not end the session", line)
	return out.String()
}

func TestSessionScenario(t *testing.T) {
	session, out := newTestSession(t)

	assert.Equal(t, util.MsgAdded+"\n", run(t, session, out, "add Alice R1 A"))
	assert.Equal(t, util.MsgAdded+"\n", run(t, session, out, `add "Bob Builder" R2 B`))
	assert.Equal(t,
		"Name: Alice, Roll Number: R1, Grade: A\nName: Bob Builder, Roll Number: R2, Grade: B\n",
		run(t, session, out, "list"))

	assert.Equal(t, util.MsgRemoved+"\n", run(t, session, out, "remove R1"))
	assert.Equal(t, util.MsgNotFound+"R1\n", run(t, session, out, "search R1"))
	assert.Equal(t, "Name: Bob Builder, Roll Number: R2, Grade: B\n", run(t, session, out, "search R2"))

	assert.Equal(t, util.MsgSaved+"\n", run(t, session, out, "save"))

	// a fresh session sees the saved roster after load
	fresh, freshOut := newTestSession(t)
	fresh.config.DataFile = session.config.DataFile
	assert.Equal(t, "", run(t, fresh, freshOut, "list"))
	assert.Equal(t, util.MsgLoaded+"\n", run(t, fresh, freshOut, "load"))
	assert.Equal(t, "Name: Bob Builder, Roll Number: R2, Grade: B\n", run(t, fresh, freshOut, "list"))
}

func TestSessionValidation(t *testing.T) {
	session, out := newTestSession(t)

	assert.Equal(t, util.MsgFieldsRequired+"\n", run(t, session, out, `add "" R1 A`))
	assert.Contains(t, run(t, session, out, "add Alice R1"), "usage: add")
	assert.Contains(t, run(t, session, out, "search"), "usage: search")
	assert.Contains(t, run(t, session, out, "frobnicate"), "unknown command")
	assert.Contains(t, run(t, session, out, `add "Alice R1 A`), "Error:")
	assert.Equal(t, "", run(t, session, out, "   "))
	assert.Equal(t, "", run(t, session, out, "list"))
}

func TestSessionLoadErrors(t *testing.T) {
	session, out := newTestSession(t)
	dir := t.TempDir()

	assert.Equal(t, util.MsgLoadFailed+"\n", run(t, session, out, "load "+filepath.Join(dir, "missing.dat")))

	corrupt := filepath.Join(dir, "corrupt.dat")
	require.NoError(t, os.WriteFile(corrupt, []byte("ROSTER\x00 garbage"), 0o644))

	run(t, session, out, "add Alice R1 A")
	assert.Equal(t, util.MsgInvalidData+"\n", run(t, session, out, "load "+corrupt))

	// prior contents are untouched
	assert.Equal(t, "Name: Alice, Roll Number: R1, Grade: A\n", run(t, session, out, "list"))
}

func TestSessionSaveError(t *testing.T) {
	session, out := newTestSession(t)

	path := filepath.Join(t.TempDir(), "missing-dir", "students.dat")
	assert.Equal(t, util.MsgSaveFailed+"\n", run(t, session, out, "save "+path))
}

func TestSessionInfoAndStats(t *testing.T) {
	session, out := newTestSession(t)

	run(t, session, out, "add Alice R1 A")
	run(t, session, out, "add Alicia R1 B")

	info := run(t, session, out, "info")
	assert.Contains(t, info, "2 students (memory backend, binary format)")
	assert.Contains(t, info, "duplicate roll numbers: R1")

	stats := run(t, session, out, "stats")
	assert.Contains(t, stats, `roster_operations_total{op="add"} 2`)

	help := run(t, session, out, "help")
	for _, name := range commandNames {
		assert.Contains(t, help, name)
	}
}

func TestSessionRun(t *testing.T) {
	session, out := newTestSession(t)

	in := strings.NewReader("add Alice R1 A\nlist\nexit\nadd Bob R2 B\n")
	require.NoError(t, session.Run(in))

	text := out.String()
	assert.Contains(t, text, prompt)
	assert.Contains(t, text, "Name: Alice, Roll Number: R1, Grade: A")
	assert.NotContains(t, text, "Bob", "input after exit must not be executed")

	assert.True(t, session.Execute("quit"))
	assert.True(t, session.Execute("EXIT"))
}

func TestSessionRunEndOfInput(t *testing.T) {
	session, out := newTestSession(t)

	require.NoError(t, session.Run(strings.NewReader("add Alice R1 A")))
	assert.Contains(t, out.String(), util.MsgAdded)
}

func TestSessionRequiresRollNumber(t *testing.T) {
	session, out := newTestSession(t)

	run(t, session, out, "add Alice R1 A")

	assert.Equal(t, util.MsgRollRequired+"\n", run(t, session, out, `remove ""`))
	assert.Equal(t, util.MsgRollRequired+"\n", run(t, session, out, `search "  "`))
	assert.Equal(t, "Name: Alice, Roll Number: R1, Grade: A\n", run(t, session, out, "list"))
}
