package revision

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/revisiones-api/internal/domain/entity"
)

// Umbrales de clasificación (inclusivos en la banda inferior).
var (
	OKThreshold      = decimal.RequireFromString("3.00")
	WarningThreshold = decimal.RequireFromString("10.00")
)

// Classify asigna la clasificación a un % de desviación:
// <= 3.00 ok, <= 10.00 warning, resto critical.
func Classify(pct decimal.Decimal) entity.ReportStatus {
	switch {
	case pct.LessThanOrEqual(OKThreshold):
		return entity.ReportOK
	case pct.LessThanOrEqual(WarningThreshold):
		return entity.ReportWarning
	default:
		return entity.ReportCritical
	}
}
