// Package cli defines the cobra command tree. Commands parse flags and
// delegate to the CLI adapters; no business logic lives here.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/dossier/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the dossier database",
		Long:  `Initialize the dossier database at ~/.dossier/dossier.db with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing dossier database at %s\n", dbPath)

			// Opening the connection creates the schema and runs migrations.
			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  dossier case create \"My First Case\" --type field")
			fmt.Println("  dossier status")

			return nil
		},
	}
}
