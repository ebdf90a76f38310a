package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"apidoc/internal/adapter/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect previously generated versions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded versions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <version>",
	Short: "Print the recorded endpoint data of a version",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <version>",
	Short: "Remove a recorded version",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var showProject bool

func init() {
	historyCmd.PersistentFlags().StringVar(&historyPath, "history", "", "bolt database (default from config output.history)")
	historyShowCmd.Flags().BoolVar(&showProject, "project", false, "print the project metadata instead of the endpoint data")
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory(cmd *cobra.Command) (*store.BoltStore, error) {
	path := GetConfig().HistoryPath()
	if cmd.Flags().Changed("history") {
		path = historyPath
	}
	if path == "" {
		return nil, errors.New("no history database configured, use --history or output.history")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("history database: %w", err)
	}
	return store.NewBoltStore(path)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	snaps, err := st.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No versions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tENDPOINTS\tGENERATED")
	for _, s := range snaps {
		fmt.Fprintf(w, "%s\t%d\t%s\n", s.Version, s.Endpoints, s.GeneratedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Get(args[0])
	if err != nil {
		return err
	}
	out := snap.Data
	if showProject {
		out = snap.Project
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	st, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted version %s.\n", args[0])
	return nil
}
