package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/llm"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage AI provider API keys",
	Long: `Keys are stored in the local database and take precedence over keys from
the config file or environment.`,
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider> [key]",
	Short: "Store an API key (reads stdin when the key is omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])
		var key string
		if len(args) == 2 {
			key = args[1]
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s API key: ", name)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			if scanner.Scan() {
				key = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read key: %w", err)
			}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return errors.New("empty key; use `keys clear` to remove one")
		}

		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.registry.SetAPIKey(cmd.Context(), name, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s key %s\n", name, maskKey(key))
		return nil
	},
}

var keysClearCmd = &cobra.Command{
	Use:   "clear <provider>",
	Short: "Remove a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		name := strings.ToLower(args[0])
		if err := e.registry.SetAPIKey(cmd.Context(), name, ""); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed stored %s key\n", name)
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers and their (masked) keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		for _, name := range llm.ProviderOrder {
			key, err := e.registry.APIKey(cmd.Context(), name)
			if err != nil {
				return err
			}
			shown := "(not set)"
			if key != "" {
				shown = maskKey(key)
			}
			fmt.Fprintf(out, "%-10s  %s\n", name, shown)
		}
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysSetCmd)
	keysCmd.AddCommand(keysClearCmd)
	keysCmd.AddCommand(keysListCmd)
}

// maskKey keeps the first and last four characters of long keys.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("•", len(key))
	}
	return key[:4] + strings.Repeat("•", 8) + key[len(key)-4:]
}
