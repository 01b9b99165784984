package event

import (
	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

// ProductionOrderHandler traduce una orden de producción en una intención
// SUPPLY en la bodega de la línea. La intención va sin grupo: el handler de
// SUPPLY consulta al evaluador y enlaza la demanda abierta si existe.
type ProductionOrderHandler struct {
	changeSvc *dispo.CandidateChangeService
}

// NewProductionOrderHandler construye el handler.
func NewProductionOrderHandler(changeSvc *dispo.CandidateChangeService) *ProductionOrderHandler {
	return &ProductionOrderHandler{changeSvc: changeSvc}
}

// Handle corre dentro de la transacción de la fachada.
func (h *ProductionOrderHandler) Handle(repo repository.CandidateRepository, sink dispo.EventSink, evt entity.ProductionOrderEvent) error {
	_, err := h.changeSvc.ApplyIntent(repo, sink, dispo.CandidateIntent{
		Type:         entity.CandidateTypeSupply,
		ProductID:    evt.ProductID,
		WarehouseID:  evt.WarehouseID,
		Date:         evt.Date,
		Qty:          evt.Qty,
		BusinessCase: entity.BusinessCaseProduction,
		ClientID:     evt.ClientID,
		OrgID:        evt.OrgID,
	})
	return err
}
