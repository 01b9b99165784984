package dispo

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

// SupplyProposalEvaluator decide si un suministro nuevo puede cubrir una
// demanda ya registrada, para no crear demanda duplicada y dejar el par
// enlazado por group_id.
type SupplyProposalEvaluator struct{}

// NewSupplyProposalEvaluator construye el evaluador (sin estado).
func NewSupplyProposalEvaluator() *SupplyProposalEvaluator {
	return &SupplyProposalEvaluator{}
}

// FindOpenDemand devuelve la demanda abierta más antigua de la partición
// (política FIFO: menor fecha, luego menor seq_no) cuya cantidad no está
// cubierta todavía por suministros de su grupo. Devuelve nil cuando no hay
// candidata elegible; eso es un resultado válido, no un error. Nunca reparte
// un suministro entre varias demandas: a lo sumo un enlace por evaluación.
func (e *SupplyProposalEvaluator) FindOpenDemand(repo repository.CandidateRepository, productID, warehouseID string) (*entity.Candidate, error) {
	demands, err := repo.Query(repository.CandidateQuery{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        entity.CandidateTypeDemand,
	})
	if err != nil {
		return nil, err
	}
	if len(demands) == 0 {
		return nil, nil
	}

	supplies, err := repo.Query(repository.CandidateQuery{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Type:        entity.CandidateTypeSupply,
	})
	if err != nil {
		return nil, err
	}

	coveredByGroup := make(map[string]decimal.Decimal)
	for _, s := range supplies {
		if s.GroupID == "" {
			continue
		}
		coveredByGroup[s.GroupID] = coveredByGroup[s.GroupID].Add(s.Quantity)
	}

	// demands ya viene en orden (date, seq_no): la primera no cubierta gana.
	for _, d := range demands {
		if d.GroupID == "" {
			return d, nil
		}
		if coveredByGroup[d.GroupID].LessThan(d.Quantity) {
			return d, nil
		}
	}
	return nil, nil
}
