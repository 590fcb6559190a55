package revision

import (
	"time"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// Period es el rango [From, To] (ambos inclusive, fechas sin hora) de movimientos que cubre una revisión.
type Period struct {
	From time.Time
	To   time.Time
}

// DateOnly trunca t a la fecha (00:00 UTC del mismo día calendario).
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodFor devuelve el periodo abierto de una revisión: desde el día siguiente al ancla, o desde el
// día 1 del mes de la revisión si no hay ancla, hasta la fecha de la revisión.
func PeriodFor(revisionDate time.Time, anchor *entity.Revision) Period {
	to := DateOnly(revisionDate)
	if anchor != nil {
		return Period{From: DateOnly(anchor.RevisionDate).AddDate(0, 0, 1), To: to}
	}
	return Period{From: time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC), To: to}
}
