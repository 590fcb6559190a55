// Package cli implementa revisionctl: migraciones, recálculo e importación de conteos sin pasar por HTTP.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	apprevision "github.com/jhoicas/revisiones-api/internal/application/revision"
	"github.com/jhoicas/revisiones-api/internal/domain/repository"
	"github.com/jhoicas/revisiones-api/pkg/config"
	"github.com/jhoicas/revisiones-api/pkg/logger"
)

// Backend es lo que necesitan los comandos. Close libera conexiones y puede ser nil.
type Backend struct {
	Revisions *apprevision.UseCase
	Repos     repository.Repositories
	Migrate   func(ctx context.Context) (int, error)
	Close     func()
}

// Opener construye el Backend a partir de la configuración cargada.
type Opener func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error)

// RootOptions flags globales.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
}

// ValidFormats formatos de salida admitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand crea el comando raíz. open se invoca una vez por comando ejecutado.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "revisionctl",
		Short: "Herramientas de operación de revisiones de inventario",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range ValidFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("formato %q inválido: debe ser uno de %v", opts.Format, ValidFormats)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log de depuración en stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (text|json)")

	r := &runner{opts: opts, open: open}
	cmd.AddCommand(newMigrateCommand(r))
	cmd.AddCommand(newRecalculateCommand(r))
	cmd.AddCommand(newImportCommand(r))

	return cmd
}

type runner struct {
	opts *RootOptions
	open Opener
}

// with carga config, abre el backend y ejecuta fn. El log va a stderr para no mezclarse con la salida.
func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, b *Backend, log zerolog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	level := cfg.App.LogLevel
	if r.opts.Verbose {
		level = "debug"
	} else if level == "" {
		level = "warn"
	}
	log := logger.New(logger.Config{Env: "production", Level: level, Service: "revisionctl", Out: cmd.ErrOrStderr()}).Zerolog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := r.open(ctx, cfg, log)
	if err != nil {
		return err
	}
	if b.Close != nil {
		defer b.Close()
	}
	return fn(ctx, b, log)
}

// print escribe v como JSON o, en modo texto, la línea text.
func (r *runner) print(w io.Writer, text string, v any) error {
	if r.opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
