package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/v0xg/resumefill/internal/profile"
)

const anthropicBaseURL = "https://api.anthropic.com"

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage model profiles",
	}
	cmd.AddCommand(newModelsListCmd(), newModelsAddCmd(), newModelsUseCmd(), newModelsRemoveCmd())
	return cmd
}

func newModelsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List model profiles; * marks the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			profiles, err := a.profiles.List(ctx)
			if err != nil {
				return err
			}
			active, err := a.profiles.Active(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tID\tNAME\tPROVIDER\tMODEL\tBASE URL\tKEY")
			for _, p := range profiles {
				mark := ""
				if p.ID == active.ID {
					mark = "*"
				}
				key := p.MaskedKey()
				if key == "" {
					key = color.YellowString("not set")
				}
				provider := p.Provider
				if provider == "" {
					provider = "openai"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", mark, p.ID, p.Name, provider, p.Model, p.BaseURL, key)
			}
			return w.Flush()
		},
	}
}

func newModelsAddCmd() *cobra.Command {
	var p profile.Profile
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a model profile",
		Long: `add creates a profile, or updates the one named by --id. Passing
--id builtin-deepseek stores a key for the built-in profile and selects it.

Example:
  resumefill models add --id builtin-deepseek --name DeepSeek --base-url https://api.deepseek.com/v1 --model deepseek-chat --api-key sk-...
  resumefill models add --name Claude --provider anthropic --model claude-sonnet-4-5 --api-key sk-ant-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			if p.BaseURL == "" && (p.Provider == "anthropic" || p.Provider == "claude") {
				p.BaseURL = anthropicBaseURL
			}
			if p.APIKey == "" {
				keyPrompt := promptui.Prompt{Label: "API key", Mask: '*'}
				if p.APIKey, err = keyPrompt.Run(); err != nil {
					return err
				}
			}
			if p.ID == profile.BuiltinID && p.Name == "" {
				p.Name = profile.Builtin().Name
			}

			saved, err := a.profiles.Save(ctx, p)
			if errors.Is(err, profile.ErrIncomplete) {
				return fmt.Errorf("%w (--name, --base-url, --api-key, --model)", err)
			}
			if err != nil {
				return err
			}
			fmt.Printf("✓ Saved %s (%s)\n", saved.Name, saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.ID, "id", "", "Update this profile instead of creating one")
	cmd.Flags().StringVar(&p.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&p.Provider, "provider", "", "API flavour: openai (default) or anthropic")
	cmd.Flags().StringVar(&p.BaseURL, "base-url", "", "API base URL, with or without /chat/completions")
	cmd.Flags().StringVar(&p.APIKey, "api-key", "", "API key (prompted for when empty)")
	cmd.Flags().StringVar(&p.Model, "model", "", "Model id")
	return cmd
}

func newModelsUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Select the active model profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.profiles.Use(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Using %s\n", args[0])
			return nil
		},
	}
}

func newModelsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a custom model profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.profiles.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Removed %s\n", args[0])
			return nil
		},
	}
}
