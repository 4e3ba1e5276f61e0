package student

import (
	"fmt"

	"github.com/ValentinKolb/roster/cmd/util"
	"github.com/ValentinKolb/roster/lib/common"
	"github.com/ValentinKolb/roster/lib/store/instrumented"
	"github.com/spf13/cobra"
)

// annotationMutates marks commands that change the roster
const annotationMutates = "mutates"

var (
	rosterStore *instrumented.Store
	config      *common.Config

	// StudentCommands represents the student command group
	StudentCommands = &cobra.Command{
		Use:                "student",
		Short:              "Manage the student roster",
		PersistentPreRunE:  openStore,
		PersistentPostRunE: persistStore,
	}
)

func init() {
	// runs even if a command fails, PersistentPostRunE does not
	cobra.OnFinalize(releaseStore)

	StudentCommands.AddCommand(addCmd)
	StudentCommands.AddCommand(removeCmd)
	StudentCommands.AddCommand(searchCmd)
	StudentCommands.AddCommand(listCmd)
	StudentCommands.AddCommand(exportCmd)
	StudentCommands.AddCommand(importCmd)
	StudentCommands.AddCommand(infoCmd)
	StudentCommands.AddCommand(perfTestCmd)
}

// openStore creates the store and loads the data file (memory backend only)
func openStore(cmd *cobra.Command, _ []string) error {
	var err error
	if config, err = util.Setup(cmd); err != nil {
		return err
	}

	s, err := util.OpenStore(config)
	if err != nil {
		return err
	}

	if err := util.LoadDataFile(s, config); err != nil {
		_ = s.Close()
		return util.LoadError(err)
	}

	rosterStore = s
	return nil
}

// persistStore saves the roster after successful mutating commands
func persistStore(cmd *cobra.Command, _ []string) error {
	if _, ok := cmd.Annotations[annotationMutates]; !ok {
		return nil
	}

	written, err := util.SaveDataFile(rosterStore, config)
	if err != nil {
		return util.SaveError(err)
	}
	if written {
		fmt.Fprintln(cmd.OutOrStdout(), util.MsgSaved)
	}
	return nil
}

// releaseStore closes the store opened by openStore, if any
func releaseStore() {
	if rosterStore == nil {
		return
	}
	if err := rosterStore.Close(); err != nil {
		util.Logger.Warningf("error closing store: %v", err)
	}
	rosterStore = nil
}
