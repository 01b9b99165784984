package dispo_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// SupplyProposalEvaluator — política FIFO de demandas abiertas
// ──────────────────────────────────────────────────────────────────────────────

func addCandidate(t *testing.T, repo *memory.CandidateRepository, typ entity.CandidateType, date time.Time, qty int64, groupID string) *entity.Candidate {
	t.Helper()
	c := entity.Candidate{
		Type:        typ,
		ProductID:   "P1",
		WarehouseID: "W1",
		Date:        date,
		Quantity:    decimal.NewFromInt(qty),
		GroupID:     groupID,
	}
	maxSeq, err := repo.MaxSeqNo(c.ProductID, c.WarehouseID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(&c, maxSeq))
	return &c
}

// Sin demandas en la partición no hay nada que enlazar: nil es un resultado
// válido, no un error.
func TestFindOpenDemand_SinDemandas(t *testing.T) {
	repo := memory.NewCandidateRepository()
	eval := dispo.NewSupplyProposalEvaluator()

	open, err := eval.FindOpenDemand(repo, "P1", "W1")
	require.NoError(t, err)
	assert.Nil(t, open)
}

// FIFO: entre varias demandas abiertas gana la de menor (fecha, seq_no).
func TestFindOpenDemand_FIFO(t *testing.T) {
	repo := memory.NewCandidateRepository()
	eval := dispo.NewSupplyProposalEvaluator()

	tardia := addCandidate(t, repo, entity.CandidateTypeDemand, dia2, 5, "")
	temprana := addCandidate(t, repo, entity.CandidateTypeDemand, dia1, 5, "")

	open, err := eval.FindOpenDemand(repo, "P1", "W1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, temprana.ID, open.ID, "la demanda más antigua se cubre primero")
	assert.NotEqual(t, tardia.ID, open.ID)
}

// Una demanda cuyo grupo ya acumula suministro suficiente está cerrada y se
// salta; la siguiente abierta gana.
func TestFindOpenDemand_DemandaCubiertaSeSalta(t *testing.T) {
	repo := memory.NewCandidateRepository()
	eval := dispo.NewSupplyProposalEvaluator()

	addCandidate(t, repo, entity.CandidateTypeDemand, dia1, 10, "g-1")
	addCandidate(t, repo, entity.CandidateTypeSupply, dia1, 10, "g-1")
	abierta := addCandidate(t, repo, entity.CandidateTypeDemand, dia2, 4, "")

	open, err := eval.FindOpenDemand(repo, "P1", "W1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, abierta.ID, open.ID)
}

// Cobertura parcial: la demanda sigue abierta mientras la suma de suministros
// de su grupo sea menor a su cantidad.
func TestFindOpenDemand_CoberturaParcialSigueAbierta(t *testing.T) {
	repo := memory.NewCandidateRepository()
	eval := dispo.NewSupplyProposalEvaluator()

	parcial := addCandidate(t, repo, entity.CandidateTypeDemand, dia1, 10, "g-1")
	addCandidate(t, repo, entity.CandidateTypeSupply, dia1, 6, "g-1")

	open, err := eval.FindOpenDemand(repo, "P1", "W1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, parcial.ID, open.ID, "6 de 10 cubiertos: la demanda sigue abierta")
}

// Todas cubiertas: el evaluador no fuerza enlaces.
func TestFindOpenDemand_TodasCubiertas(t *testing.T) {
	repo := memory.NewCandidateRepository()
	eval := dispo.NewSupplyProposalEvaluator()

	addCandidate(t, repo, entity.CandidateTypeDemand, dia1, 3, "g-1")
	addCandidate(t, repo, entity.CandidateTypeSupply, dia1, 3, "g-1")

	open, err := eval.FindOpenDemand(repo, "P1", "W1")
	require.NoError(t, err)
	assert.Nil(t, open)
}
