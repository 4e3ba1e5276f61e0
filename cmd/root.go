package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/roster/cmd/shell"
	"github.com/ValentinKolb/roster/cmd/student"
	"github.com/ValentinKolb/roster/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:          "roster",
		Short:        "student roster management",
		SilenceUsage: true,
		Long: fmt.Sprintf(`roster (v%s)

Maintains a roster of students (name, roll number, grade) with add, remove,
search and list operations. The roster is kept in memory and saved to a data
file, or stored in a sqlite or postgres database.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of roster",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "roster v%s\n", Version)
		},
	}
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the active configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.BindCommandFlags(cmd); err != nil {
				return err
			}
			config := util.GetConfig()
			if err := config.Validate(); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.String())
			return nil
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(student.StudentCommands)
	RootCmd.AddCommand(shell.ShellCmd)
	RootCmd.AddCommand(configCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupStoreFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
