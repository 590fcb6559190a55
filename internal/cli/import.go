package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

func newImportCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "import <revision-id> <archivo.xlsx>",
		Short: "Importa una hoja de conteo a una revisión en draft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			return r.with(cmd, func(ctx context.Context, b *Backend, _ zerolog.Logger) error {
				productionID, err := b.Repos.Revisions.ProductionOf(ctx, args[0])
				if err != nil {
					return fmt.Errorf("revisión %s: %w", args[0], err)
				}
				res, err := b.Revisions.ImportItems(ctx, entity.SystemActor(productionID), args[0], f)
				if err != nil {
					return fmt.Errorf("importar %s: %w", args[1], err)
				}
				text := fmt.Sprintf("%d línea(s) importada(s)", res.Imported)
				if len(res.Skipped) > 0 {
					text += "\nomitidas:\n  " + strings.Join(res.Skipped, "\n  ")
				}
				return r.print(cmd.OutOrStdout(), text, res)
			})
		},
	}
}
