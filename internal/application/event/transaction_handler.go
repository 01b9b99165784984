package event

import (
	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

// TransactionCreatedHandler traduce una transacción de inventario en un
// movimiento sin contraparte: UNRELATED_INCREASE si la cantidad es positiva,
// UNRELATED_DECREASE si es negativa.
type TransactionCreatedHandler struct {
	changeSvc *dispo.CandidateChangeService
}

// NewTransactionCreatedHandler construye el handler.
func NewTransactionCreatedHandler(changeSvc *dispo.CandidateChangeService) *TransactionCreatedHandler {
	return &TransactionCreatedHandler{changeSvc: changeSvc}
}

// Handle corre dentro de la transacción de la fachada.
func (h *TransactionCreatedHandler) Handle(repo repository.CandidateRepository, sink dispo.EventSink, evt entity.TransactionCreatedEvent) error {
	t := entity.CandidateTypeUnrelatedIncrease
	qty := evt.Qty
	if qty.IsNegative() {
		t = entity.CandidateTypeUnrelatedDecrease
		qty = qty.Neg()
	}
	_, err := h.changeSvc.ApplyIntent(repo, sink, dispo.CandidateIntent{
		Type:         t,
		ProductID:    evt.ProductID,
		WarehouseID:  evt.WarehouseID,
		Date:         evt.Date,
		Qty:          qty,
		BusinessCase: entity.BusinessCaseTransaction,
		ClientID:     evt.ClientID,
		OrgID:        evt.OrgID,
	})
	return err
}
