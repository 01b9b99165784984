package dispo

import (
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

var _ CandidateHandler = (*DemandCandidateHandler)(nil)

// DemandCandidateHandler resuelve intenciones DEMAND: aplica el movimiento
// (delta negativo sobre el stock proyectado) y, si la partición queda en
// negativo en esa fecha, agrega un SupplyRequiredEvent al sink para que otro
// módulo proponga suministro después del commit.
type DemandCandidateHandler struct {
	stockSvc *StockCandidateService
}

// NewDemandCandidateHandler construye el handler.
func NewDemandCandidateHandler(stockSvc *StockCandidateService) *DemandCandidateHandler {
	return &DemandCandidateHandler{stockSvc: stockSvc}
}

func (h *DemandCandidateHandler) Handles() []entity.CandidateType {
	return []entity.CandidateType{entity.CandidateTypeDemand}
}

func (h *DemandCandidateHandler) OnIntent(repo repository.CandidateRepository, sink EventSink, intent CandidateIntent) (*entity.Candidate, error) {
	mov, err := h.stockSvc.ApplyMovement(repo, movementSpec(intent))
	if err != nil {
		return nil, err
	}

	stock, err := repo.FindStockAtDate(intent.ProductID, intent.WarehouseID, intent.Date)
	if err != nil {
		return nil, err
	}
	if stock != nil && stock.Quantity.IsNegative() {
		sink.Add(entity.SupplyRequiredEvent{
			EventDescriptor: entity.EventDescriptor{ClientID: intent.ClientID, OrgID: intent.OrgID},
			ProductID:       intent.ProductID,
			WarehouseID:     intent.WarehouseID,
			Date:            intent.Date,
			Qty:             stock.Quantity.Neg(),
			DemandID:        mov.ID,
		})
	}
	return mov, nil
}

// movementSpec traduce una intención al spec que entiende el servicio de stock.
func movementSpec(intent CandidateIntent) MovementSpec {
	return MovementSpec{
		Type:         intent.Type,
		ProductID:    intent.ProductID,
		WarehouseID:  intent.WarehouseID,
		BPartnerID:   intent.BPartnerID,
		Date:         intent.Date,
		Qty:          intent.Qty,
		GroupID:      intent.GroupID,
		BusinessCase: intent.BusinessCase,
		ClientID:     intent.ClientID,
		OrgID:        intent.OrgID,
	}
}
