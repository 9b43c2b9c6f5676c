package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/v0xg/resumefill/internal/memory"
)

func newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage remembered field values",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List remembered values, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := openApp(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				entries, err := a.memory.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Println("Memory is empty. Use `resumefill snapshot <url>` to remember a page.")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tLABEL\tVALUE\tUPDATED")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Key, e.Label, e.Value, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
				}
				w.Flush()
				fmt.Printf("%d of %d entries\n", len(entries), memory.MaxEntries)
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <key>",
			Short: "Forget one remembered value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				if err := a.memory.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Printf("✓ Forgot %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget every remembered value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := openApp(cmd)
				if err != nil {
					return err
				}
				defer a.Close()

				if err := a.memory.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("✓ Memory cleared")
				return nil
			},
		},
	)
	return cmd
}
