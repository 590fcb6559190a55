package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newMigrateCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL embebidas que falten",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, b *Backend, _ zerolog.Logger) error {
				if b.Migrate == nil {
					return fmt.Errorf("el backend no admite migraciones")
				}
				n, err := b.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("migrar: %w", err)
				}
				return r.print(cmd.OutOrStdout(), fmt.Sprintf("%d migración(es) aplicada(s)", n), map[string]int{"applied": n})
			})
		},
	}
}
