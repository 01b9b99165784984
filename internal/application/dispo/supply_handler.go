package dispo

import (
	"github.com/google/uuid"

	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

var _ CandidateHandler = (*SupplyCandidateHandler)(nil)

// SupplyCandidateHandler resuelve intenciones SUPPLY. Si la intención no trae
// grupo, consulta al evaluador de propuestas: cuando existe una demanda
// abierta elegible, el suministro se enlaza a ella por group_id en vez de
// quedar suelto (así la cobertura queda registrada y no se duplica demanda).
type SupplyCandidateHandler struct {
	stockSvc  *StockCandidateService
	evaluator *SupplyProposalEvaluator
}

// NewSupplyCandidateHandler construye el handler.
func NewSupplyCandidateHandler(stockSvc *StockCandidateService, evaluator *SupplyProposalEvaluator) *SupplyCandidateHandler {
	return &SupplyCandidateHandler{stockSvc: stockSvc, evaluator: evaluator}
}

func (h *SupplyCandidateHandler) Handles() []entity.CandidateType {
	return []entity.CandidateType{entity.CandidateTypeSupply}
}

func (h *SupplyCandidateHandler) OnIntent(repo repository.CandidateRepository, _ EventSink, intent CandidateIntent) (*entity.Candidate, error) {
	if intent.GroupID == "" {
		open, err := h.evaluator.FindOpenDemand(repo, intent.ProductID, intent.WarehouseID)
		if err != nil {
			return nil, err
		}
		if open != nil {
			group := open.GroupID
			if group == "" {
				group = uuid.New().String()
				if err := repo.UpdateGroupID(open.ID, group); err != nil {
					return nil, err
				}
			}
			intent.GroupID = group
		}
	}
	return h.stockSvc.ApplyMovement(repo, movementSpec(intent))
}
