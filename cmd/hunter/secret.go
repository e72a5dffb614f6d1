package main

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"aidhunter-engine/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage API keys and passwords in the OS keychain",
}

var secretSetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store a secret (gemini, sendgrid, imap)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		account, err := resolveAccount(args[0])
		if err != nil {
			return err
		}

		prompt := promptui.Prompt{
			Label: fmt.Sprintf("Value for %s", account),
			Mask:  '*',
		}
		value, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := secrets.Set(account, value); err != nil {
			return err
		}
		fmt.Printf("Stored %s in keychain service %q\n", account, secrets.KeyringService)
		return nil
	},
}

var secretDeleteCmd = &cobra.Command{
	Use:   "delete <account>",
	Short: "Remove a secret from the keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		account, err := resolveAccount(args[0])
		if err != nil {
			return err
		}
		if err := secrets.Delete(account); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", account)
		return nil
	},
}

func init() {
	secretCmd.AddCommand(secretSetCmd)
	secretCmd.AddCommand(secretDeleteCmd)
	rootCmd.AddCommand(secretCmd)
}

// resolveAccount maps the short names used on the command line to keychain
// account names. The imap account depends on the configured mailbox.
func resolveAccount(name string) (string, error) {
	switch name {
	case "gemini":
		return secrets.AccountGemini, nil
	case "sendgrid":
		return secrets.AccountSendGrid, nil
	case "imap":
		cfg, err := loadConfig()
		if err != nil {
			return "", err
		}
		return secrets.IMAPAccount(cfg), nil
	default:
		return "", fmt.Errorf("unknown secret %q (expected gemini, sendgrid or imap)", name)
	}
}
