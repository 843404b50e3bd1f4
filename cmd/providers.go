package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Show AI providers and choose which one evaluates answers",
}

var providersStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show providers in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-10s  %-4s  %-28s  %s\n", "Provider", "Key", "Model", "")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, p := range e.registry.Status(cmd.Context()) {
			key := "✗"
			if p.HasKey {
				key = "✓"
			}
			var notes []string
			if p.Active {
				notes = append(notes, "active")
			}
			if p.Forced {
				notes = append(notes, "forced")
			}
			fmt.Fprintf(out, "%-10s  %-4s  %-28s  %s\n", p.Name, key, truncate(p.Model, 28), strings.Join(notes, ", "))
		}
		return nil
	},
}

var providersForceCmd = &cobra.Command{
	Use:   "force <provider>",
	Short: "Always evaluate with one provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		name := strings.ToLower(args[0])
		if err := e.registry.Force(cmd.Context(), name); err != nil {
			return err
		}
		if key, _ := e.registry.APIKey(cmd.Context(), name); key == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s has no API key; automatic selection applies until one is set\n", name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Forced provider: %s\n", name)
		return nil
	},
}

var providersUnforceCmd = &cobra.Command{
	Use:   "unforce",
	Short: "Return to automatic provider selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.registry.Force(cmd.Context(), ""); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Automatic provider selection restored")
		return nil
	},
}

func init() {
	providersCmd.AddCommand(providersStatusCmd)
	providersCmd.AddCommand(providersForceCmd)
	providersCmd.AddCommand(providersUnforceCmd)
}
