package event

import (
	"github.com/google/uuid"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

// DistributionOrderHandler traduce una orden de distribución origen->destino
// en sus intenciones, en este orden causal exacto:
//
//  1. DEMAND en destino (solo si el evaluador no encuentra una demanda abierta
//     que la orden venga a cubrir; si la encuentra, se enlaza en vez de duplicar).
//  2. SUPPLY en destino, mismo group_id: la distribución satisface la demanda,
//     compartiendo el snapshot STOCK intermedio.
//  3. DEMAND en origen, mismo group_id: la bodega origen cede la cantidad.
//
// Ambas particiones se actualizan dentro de la misma transacción de la fachada.
type DistributionOrderHandler struct {
	changeSvc *dispo.CandidateChangeService
	evaluator *dispo.SupplyProposalEvaluator
}

// NewDistributionOrderHandler construye el handler.
func NewDistributionOrderHandler(changeSvc *dispo.CandidateChangeService, evaluator *dispo.SupplyProposalEvaluator) *DistributionOrderHandler {
	return &DistributionOrderHandler{changeSvc: changeSvc, evaluator: evaluator}
}

// Handle corre dentro de la transacción de la fachada.
func (h *DistributionOrderHandler) Handle(repo repository.CandidateRepository, sink dispo.EventSink, evt entity.DistributionOrderEvent) error {
	groupID := uuid.New().String()

	open, err := h.evaluator.FindOpenDemand(repo, evt.ProductID, evt.ToWarehouseID)
	if err != nil {
		return err
	}
	switch {
	case open == nil:
		// El destino aún no registró la necesidad: la orden la crea.
		if _, err := h.changeSvc.ApplyIntent(repo, sink, h.intent(evt, entity.CandidateTypeDemand, evt.ToWarehouseID, groupID)); err != nil {
			return err
		}
	case open.GroupID == "":
		if err := repo.UpdateGroupID(open.ID, groupID); err != nil {
			return err
		}
	default:
		groupID = open.GroupID
	}

	if _, err := h.changeSvc.ApplyIntent(repo, sink, h.intent(evt, entity.CandidateTypeSupply, evt.ToWarehouseID, groupID)); err != nil {
		return err
	}
	if _, err := h.changeSvc.ApplyIntent(repo, sink, h.intent(evt, entity.CandidateTypeDemand, evt.FromWarehouseID, groupID)); err != nil {
		return err
	}
	return nil
}

func (h *DistributionOrderHandler) intent(evt entity.DistributionOrderEvent, t entity.CandidateType, warehouseID, groupID string) dispo.CandidateIntent {
	return dispo.CandidateIntent{
		Type:         t,
		ProductID:    evt.ProductID,
		WarehouseID:  warehouseID,
		BPartnerID:   evt.BPartnerID,
		Date:         evt.Date,
		Qty:          evt.Qty,
		GroupID:      groupID,
		BusinessCase: entity.BusinessCaseDistribution,
		ClientID:     evt.ClientID,
		OrgID:        evt.OrgID,
	}
}
