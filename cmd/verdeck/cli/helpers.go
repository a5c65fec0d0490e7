package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/verdeck/verdeck/internal/store"
)

// openStore opens the backing store from the effective configuration.
// The caller owns the returned handle and must Close it.
func openStore() (*store.Store, error) {
	st, err := store.Open(store.Options{
		Driver:       viper.GetString("database.driver"),
		DSN:          viper.GetString("database.dsn"),
		SessionTable: viper.GetString("session.table"),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
