package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joe-ervin05/brick/config"
	"github.com/joe-ervin05/brick/daos"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the active database",
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the active database path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.OpenStore(config.Cfg.ConfigPath)
		if err != nil {
			return err
		}
		if path := store.DBPath(); path != "" {
			fmt.Println(path)
			return nil
		}
		fmt.Println("(none selected)")
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <path>",
	Short: "Select the active database",
	Long: `Set opens the database at path and, if it opens cleanly, records it as
the active database. A running server picks up the change automatically.

Local paths are stored as absolute paths. libsql://, http(s):// and
ws(s):// URLs select a remote libSQL database.

Example:
  brick config set ./data/app.db
  brick config set libsql://my-db.turso.io?authToken=...`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !daos.IsRemote(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		path = abs
	}

	store, err := config.OpenStore(config.Cfg.ConfigPath)
	if err != nil {
		return err
	}

	mgr := daos.NewManager(store)
	defer mgr.Close()

	if err := mgr.Use(cmd.Context(), path); err != nil {
		return fmt.Errorf("select database: %w", err)
	}

	fmt.Printf("Active database: %s\n", path)
	return nil
}
