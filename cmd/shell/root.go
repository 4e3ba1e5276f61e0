package shell

import (
	"fmt"

	"github.com/ValentinKolb/roster/cmd/util"
	"github.com/spf13/cobra"
)

// ShellCmd starts an interactive session
var ShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive roster session",
	Long: `Start an interactive roster session.

The session starts with an empty roster for the memory backend (use load to
read the data file) or with the contents of the database. Changes are only
written to a file with save.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := util.Setup(cmd)
		if err != nil {
			return err
		}

		s, err := util.OpenStore(config)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Close(); err != nil {
				util.Logger.Warningf("error closing store: %v", err)
			}
		}()

		fmt.Fprintln(cmd.OutOrStdout(), "Student Management System (type help for a list of commands)")
		return NewSession(s, config, cmd.OutOrStdout()).Run(cmd.InOrStdin())
	},
}
