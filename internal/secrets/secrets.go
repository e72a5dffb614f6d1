package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"aidhunter-engine/internal/config"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "aidhunter"

	AccountGemini   = "gemini-api-key"
	AccountSendGrid = "sendgrid-api-key"
)

// env overrides, mostly for headless boxes without a keychain daemon
const (
	EnvGemini   = "GEMINI_API_KEY"
	EnvSendGrid = "SENDGRID_API_KEY"
	EnvIMAP     = "AIDHUNTER_IMAP_PASSWORD"
)

// Get looks up a secret, preferring the environment override over the
// keychain.
func Get(account, envVar string) (string, error) {
	if envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, nil
		}
	}
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	pw, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", fmt.Errorf("secret %q not found (store it with `hunter secret set` or export %s): %w", account, envVar, err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", fmt.Errorf("secret %q is empty", account)
	}
	return pw, nil
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

func GeminiAPIKey() (string, error) {
	return Get(AccountGemini, EnvGemini)
}

func SendGridAPIKey() (string, error) {
	return Get(AccountSendGrid, EnvSendGrid)
}

func IMAPPassword(cfg config.Config) (string, error) {
	return Get(IMAPAccount(cfg), EnvIMAP)
}

// IMAPAccount derives the keychain account name for the configured mailbox.
func IMAPAccount(cfg config.Config) string {
	return fmt.Sprintf("imap:%s@%s", cfg.Sources.Email.Username, cfg.Sources.Email.IMAPHost)
}
