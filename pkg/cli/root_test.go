package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommandRegistersEverySubcommand(t *testing.T) {
	app := testApp(t, nil)
	root := NewRootCommand(app)

	for _, name := range []string{"install", "uninstall", "upgrade", "apply", "rollback", "search", "doctor"} {
		_, ok := root.Subcommands[name]
		assert.Truef(t, ok, "expected subcommand %q to be registered", name)
	}
}

func TestExecuteDispatchesToMatchingSubcommand(t *testing.T) {
	app := testApp(t, nil)
	root := NewRootCommand(app)

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"pygr", "doctor"}

	err := root.Execute()
	require.NoError(t, err)
}

func TestExecuteWithNoArgsPrintsUsage(t *testing.T) {
	app := testApp(t, nil)
	root := NewRootCommand(app)

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"pygr"}

	err := root.Execute()
	assert.NoError(t, err)
}

func TestExecuteRejectsUnknownCommand(t *testing.T) {
	app := testApp(t, nil)
	root := NewRootCommand(app)

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"pygr", "frobnicate"}

	err := root.Execute()
	assert.ErrorContains(t, err, "unknown command")
}

func TestExecuteHelpFlagPrintsUsageWithoutError(t *testing.T) {
	app := testApp(t, nil)
	root := NewRootCommand(app)

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"pygr", "--help"}

	err := root.Execute()
	assert.NoError(t, err)
}
