package event

import (
	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

// ShipmentScheduleCreatedHandler traduce un despacho agendado en una única
// intención DEMAND en la bodega del despacho.
type ShipmentScheduleCreatedHandler struct {
	changeSvc *dispo.CandidateChangeService
}

// NewShipmentScheduleCreatedHandler construye el handler.
func NewShipmentScheduleCreatedHandler(changeSvc *dispo.CandidateChangeService) *ShipmentScheduleCreatedHandler {
	return &ShipmentScheduleCreatedHandler{changeSvc: changeSvc}
}

// Handle corre dentro de la transacción de la fachada.
func (h *ShipmentScheduleCreatedHandler) Handle(repo repository.CandidateRepository, sink dispo.EventSink, evt entity.ShipmentScheduleCreatedEvent) error {
	_, err := h.changeSvc.ApplyIntent(repo, sink, dispo.CandidateIntent{
		Type:         entity.CandidateTypeDemand,
		ProductID:    evt.ProductID,
		WarehouseID:  evt.WarehouseID,
		BPartnerID:   evt.BPartnerID,
		Date:         evt.Date,
		Qty:          evt.Qty,
		BusinessCase: entity.BusinessCaseShipment,
		ClientID:     evt.ClientID,
		OrgID:        evt.OrgID,
	})
	return err
}
