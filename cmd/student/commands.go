package student

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ValentinKolb/roster/cmd/util"
	"github.com/ValentinKolb/roster/lib/roster"
	"github.com/ValentinKolb/roster/lib/serializer"
	"github.com/ValentinKolb/roster/lib/store"
	"github.com/ValentinKolb/roster/lib/store/lstore"
	"github.com/spf13/cobra"
)

var (
	addCmd = &cobra.Command{
		Use:         "add [name] [roll number] [grade]",
		Short:       "Adds a student to the roster",
		Args:        cobra.ExactArgs(3),
		Annotations: map[string]string{annotationMutates: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			name, rollNumber, grade := args[0], args[1], args[2]
			if err := util.ValidateInput(name, rollNumber, grade); err != nil {
				return err
			}
			if err := rosterStore.Add(roster.New(name, rollNumber, grade)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), util.MsgAdded)
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:         "remove [roll number]",
		Short:       "Removes all students with the roll number",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationMutates: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.ValidateRollNumber(args[0]); err != nil {
				return err
			}
			if err := rosterStore.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), util.MsgRemoved)
			return nil
		},
	}
	searchCmd = &cobra.Command{
		Use:   "search [roll number]",
		Short: "Shows the first student with the roll number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := util.ValidateRollNumber(args[0]); err != nil {
				return err
			}
			student, found, err := rosterStore.FindByRollNumber(args[0])
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), util.MsgNotFound+args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), student)
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Shows all students in insertion order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			students, err := rosterStore.ListAll()
			if err != nil {
				return err
			}
			for _, student := range students {
				fmt.Fprintln(cmd.OutOrStdout(), student)
			}
			return nil
		},
	}
	exportCmd = &cobra.Command{
		Use:   "export [path]",
		Short: "Saves the roster to another file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := formatSerializer(cmd)
			if err != nil {
				return err
			}
			students, err := rosterStore.ListAll()
			if err != nil {
				return err
			}

			// copy into a memory store that writes the requested format
			tmp := lstore.NewLocalStore(s)
			for _, student := range students {
				if err := tmp.Add(student); err != nil {
					return err
				}
			}
			if err := store.SaveFile(tmp, args[0]); err != nil {
				return util.SaveError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), util.MsgSaved)
			return nil
		},
	}
	importCmd = &cobra.Command{
		Use:         "import [path]",
		Short:       "Replaces the roster with the students in another file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationMutates: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := formatSerializer(cmd)
			if err != nil {
				return err
			}

			if err := importFile(s, args[0]); err != nil {
				return util.LoadError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), util.MsgLoaded)
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Shows statistics and metrics of the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := rosterStore.Info()
			if err != nil {
				return err
			}
			printInfo(cmd, info)
			fmt.Fprintln(cmd.OutOrStdout())
			rosterStore.WriteMetrics(cmd.OutOrStdout())
			return nil
		},
	}
)

func init() {
	key := "format"
	exportCmd.Flags().String(key, "", util.WrapString("The format of the file (defaults to the configured serializer)"))
	importCmd.Flags().String(key, "", util.WrapString("The format of the file (defaults to the configured serializer)"))
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// formatSerializer returns the serializer selected with --format
func formatSerializer(cmd *cobra.Command) (serializer.IRosterSerializer, error) {
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = config.Serializer
	}
	return util.GetSerializer(format)
}

// importFile decodes the file completely before the roster is replaced
func importFile(s serializer.IRosterSerializer, path string) error {
	tmp := lstore.NewLocalStore(s)
	if err := store.LoadFile(tmp, path); err != nil {
		return err
	}
	students, err := tmp.ListAll()
	if err != nil {
		return err
	}

	target, err := util.GetSerializer(config.Serializer)
	if err != nil {
		return err
	}
	data, err := target.Serialize(students)
	if err != nil {
		return store.WrapError(store.RetCInternalError, "unable to convert records", err)
	}
	return rosterStore.Load(bytes.NewReader(data))
}

func printInfo(cmd *cobra.Command, info store.StoreInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %-22s: %s\n", "Backend", info.Backend)
	fmt.Fprintf(out, "  %-22s: %s\n", "Serializer", info.Serializer)
	fmt.Fprintf(out, "  %-22s: %d\n", "Records", info.Records)
	if len(info.DuplicateRollNumbers) > 0 {
		fmt.Fprintf(out, "  %-22s: %s\n", "Duplicate Roll Numbers", strings.Join(info.DuplicateRollNumbers, ", "))
	}

	grades := make([]string, 0, len(info.GradeDistribution))
	for grade := range info.GradeDistribution {
		grades = append(grades, grade)
	}
	sort.Strings(grades)
	for _, grade := range grades {
		fmt.Fprintf(out, "  %-22s: %d\n", "Grade "+grade, info.GradeDistribution[grade])
	}
}
