package dispo

import (
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

var _ CandidateHandler = (*UnrelatedMovementHandler)(nil)

// UnrelatedMovementHandler resuelve aumentos y disminuciones de stock sin
// contraparte de demanda/suministro (transacciones de inventario sueltas).
type UnrelatedMovementHandler struct {
	stockSvc *StockCandidateService
}

// NewUnrelatedMovementHandler construye el handler.
func NewUnrelatedMovementHandler(stockSvc *StockCandidateService) *UnrelatedMovementHandler {
	return &UnrelatedMovementHandler{stockSvc: stockSvc}
}

func (h *UnrelatedMovementHandler) Handles() []entity.CandidateType {
	return []entity.CandidateType{
		entity.CandidateTypeUnrelatedIncrease,
		entity.CandidateTypeUnrelatedDecrease,
	}
}

func (h *UnrelatedMovementHandler) OnIntent(repo repository.CandidateRepository, _ EventSink, intent CandidateIntent) (*entity.Candidate, error) {
	return h.stockSvc.ApplyMovement(repo, movementSpec(intent))
}
