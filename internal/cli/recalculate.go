package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// RecalculateResult salida de `revisionctl recalculate`.
type RecalculateResult struct {
	RevisionID     string `json:"revision_id"`
	Status         string `json:"status"`
	AnchorID       string `json:"anchor_id,omitempty"`
	ReportsWritten int    `json:"reports_written"`
	Warnings       int    `json:"warnings"`
	CarriedForward int    `json:"carried_forward"`
}

func newRecalculateCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate <revision-id>",
		Short: "Vuelve a ejecutar la conciliación de una revisión como actor de sistema",
		Long: `Ejecuta calculate sobre la revisión con un actor administrativo del tenant dueño.
Respeta la máquina de estados (una revisión submitted debe abrirse antes) y el lock por sede.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.with(cmd, func(ctx context.Context, b *Backend, log zerolog.Logger) error {
				productionID, err := b.Repos.Revisions.ProductionOf(ctx, args[0])
				if err != nil {
					return fmt.Errorf("revisión %s: %w", args[0], err)
				}
				out, err := b.Revisions.Calculate(ctx, entity.SystemActor(productionID), args[0])
				if err != nil {
					return fmt.Errorf("recalcular %s: %w", args[0], err)
				}
				res := RecalculateResult{
					RevisionID:     out.Revision.ID,
					Status:         string(out.Revision.Status),
					CarriedForward: out.CarriedForward,
				}
				if out.Result != nil {
					res.AnchorID = out.Result.AnchorID
					res.ReportsWritten = out.Result.ReportsWritten
					res.Warnings = out.Result.Warnings
				}
				log.Debug().Str("revision_id", res.RevisionID).Msg("recálculo terminado")
				text := fmt.Sprintf("revisión %s: %s, %d report(s), %d warning(s)",
					res.RevisionID, res.Status, res.ReportsWritten, res.Warnings)
				return r.print(cmd.OutOrStdout(), text, res)
			})
		},
	}
}
