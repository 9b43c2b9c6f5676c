package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/v0xg/resumefill/internal/resume"
)

func newResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Parse, show and edit the stored résumé",
	}
	cmd.AddCommand(newResumeParseCmd(), newResumeShowCmd(), newResumeSetCmd())
	return cmd
}

func newResumeParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.pdf|file.txt>",
		Short: "Convert a résumé to structured JSON with the active model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			text, err := resume.ReadText(args[0])
			if err != nil {
				return err
			}
			provider, p, err := a.provider(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("→ Parsing résumé via %s... ", p.Name)
			r, err := a.resumes.Parse(ctx, provider, text)
			if err != nil {
				fmt.Println("failed")
				return err
			}
			fmt.Println("done")
			printRows(resume.Flatten(r.Structured))
			fmt.Printf("✓ Saved résumé (%d rows)\n", len(resume.Flatten(r.Structured)))
			return nil
		},
	}
}

func newResumeShowCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored résumé as pointer/value rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.resumes.Load(cmd.Context())
			if err != nil {
				return err
			}
			if raw {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(r.Structured)
			}
			printRows(resume.Flatten(r.Structured))
			fmt.Println(color.New(color.Faint).Sprintf("updated %s", r.UpdatedAt.Local().Format("2006-01-02 15:04")))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the structured JSON")
	return cmd
}

func newResumeSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <pointer> <value>",
		Short: "Replace one value of the stored résumé",
		Long: `set replaces the value at a JSON pointer such as /basic/phone or
/education/0/school. A value that parses as JSON is stored as that JSON,
anything else as a string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.resumes.Set(cmd.Context(), args[0], parseCLIValue(args[1])); err != nil {
				return err
			}
			fmt.Printf("✓ Updated %s\n", args[0])
			return nil
		},
	}
}

func parseCLIValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func printRows(rows []resume.Row) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%v\n", r.Pointer, r.Label, r.Value)
	}
	w.Flush()
}
