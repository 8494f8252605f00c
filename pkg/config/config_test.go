package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "accounts": [
    {
      "card_number": "5400-1261-0258-1483",
      "name": "OCBC Rewards",
      "bank": "OCBC",
      "type": "credit_card"
    },
    {
      "card_number": "601-123456-001",
      "name": "OCBC 360",
      "bank": "OCBC",
      "type": "savings"
    }
  ],
  "lunch_money": {
    "api_key": "file-key",
    "account_mapping": {
      "OCBC Rewards": 7,
      "OCBC 360": 12
    }
  }
}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadExplicitPath(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Len(t, cfg.Accounts, 2)
	require.Equal(t, "OCBC Rewards", cfg.Accounts[0].Name)
	require.Equal(t, "file-key", cfg.LunchMoney.APIKey)
	require.Equal(t, 7, cfg.LunchMoney.AccountMapping["OCBC Rewards"])
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadNoConfigAnywhere(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Empty(t, cfg.Accounts)
	require.Empty(t, cfg.LunchMoney.APIKey)
}

func TestLoadEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("LUNCHMONEY_API_KEY", "env-key")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.Equal(t, "env-key", cfg.LunchMoney.APIKey)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := &Config{
		Accounts: []Account{
			{CardNumber: "4111-2222-3333-4444", Name: "Citi Rewards", Bank: "Citi", Type: "credit_card"},
		},
		LunchMoney: LunchMoney{
			APIKey:         "secret",
			AccountMapping: map[string]int{"Citi Rewards": 3},
		},
	}

	path := filepath.Join(t.TempDir(), "sub", FileName)
	saved, err := cfg.Save(path)
	require.NoError(t, err)
	require.Equal(t, path, saved)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Accounts, loaded.Accounts)
	require.Equal(t, cfg.LunchMoney.APIKey, loaded.LunchMoney.APIKey)
	require.Equal(t, cfg.LunchMoney.AccountMapping, loaded.LunchMoney.AccountMapping)
}

func TestMappings(t *testing.T) {
	cfg := &Config{
		Accounts: []Account{
			{CardNumber: "1111", Name: "A", Bank: "OCBC"},
			{CardNumber: "2222", Name: "B", Bank: "DBS", Type: "savings"},
		},
	}

	mappings := cfg.Mappings()
	require.Len(t, mappings, 2)
	require.Equal(t, "credit_card", mappings[0].AccountType)
	require.Equal(t, "savings", mappings[1].AccountType)
	require.Equal(t, "1111", mappings[0].Identifier)
}

func TestAPIKeyOverride(t *testing.T) {
	cfg := &Config{LunchMoney: LunchMoney{APIKey: "from-file"}}
	require.Equal(t, "from-file", cfg.APIKey(""))
	require.Equal(t, "cli-key", cfg.APIKey("cli-key"))
}
