package event

import (
	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

// ForecastCreatedHandler traduce un pronóstico en una intención DEMAND marcada
// como FORECAST: misma mecánica de ledger que la demanda firme, solo cambia el
// business case para reporting.
type ForecastCreatedHandler struct {
	changeSvc *dispo.CandidateChangeService
}

// NewForecastCreatedHandler construye el handler.
func NewForecastCreatedHandler(changeSvc *dispo.CandidateChangeService) *ForecastCreatedHandler {
	return &ForecastCreatedHandler{changeSvc: changeSvc}
}

// Handle corre dentro de la transacción de la fachada.
func (h *ForecastCreatedHandler) Handle(repo repository.CandidateRepository, sink dispo.EventSink, evt entity.ForecastCreatedEvent) error {
	_, err := h.changeSvc.ApplyIntent(repo, sink, dispo.CandidateIntent{
		Type:         entity.CandidateTypeDemand,
		ProductID:    evt.ProductID,
		WarehouseID:  evt.WarehouseID,
		Date:         evt.Date,
		Qty:          evt.Qty,
		BusinessCase: entity.BusinessCaseForecast,
		ClientID:     evt.ClientID,
		OrgID:        evt.OrgID,
	})
	return err
}
