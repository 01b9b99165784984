package dispo_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
	"github.com/jhoicas/material-dispo/internal/infrastructure/memory"
	"github.com/jhoicas/material-dispo/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	dia1 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	dia2 = time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	dia3 = time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func spec(t entity.CandidateType, qty int64, date time.Time) dispo.MovementSpec {
	return dispo.MovementSpec{
		Type:        t,
		ProductID:   "P1",
		WarehouseID: "W1",
		Date:        date,
		Qty:         decimal.NewFromInt(qty),
	}
}

// partition devuelve la partición (P1, W1) ordenada.
func partition(t *testing.T, repo repository.CandidateRepository) []*entity.Candidate {
	t.Helper()
	out, err := repo.Query(repository.CandidateQuery{ProductID: "P1", WarehouseID: "W1"})
	require.NoError(t, err)
	return out
}

func assertQty(t *testing.T, expected int64, c *entity.Candidate) {
	t.Helper()
	assert.True(t, decimal.NewFromInt(expected).Equal(c.Quantity),
		"cantidad esperada %d, obtenida %s (tipo %s, seq %d)", expected, c.Quantity, c.Type, c.SeqNo)
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyMovement — snapshot compartido y propagación
// ──────────────────────────────────────────────────────────────────────────────

// Un aumento aislado produce el movimiento más su snapshot STOCK (Escenario B
// con el servicio directamente; la variante vía evento se prueba en facade_test).
func TestApplyMovement_AumentoAislado(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	mov, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeUnrelatedIncrease, 5, dia1))
	require.NoError(t, err)
	require.NotEmpty(t, mov.ID)

	all := partition(t, repo)
	require.Len(t, all, 2, "movimiento + snapshot STOCK")
	assert.Equal(t, entity.CandidateTypeUnrelatedIncrease, all[0].Type)
	assert.Equal(t, entity.CandidateTypeStock, all[1].Type)
	assertQty(t, 5, all[1])

	assert.NoError(t, svc.VerifyPartition(repo, "P1", "W1"))
}

// Varios movimientos en la misma fecha comparten un único snapshot STOCK que
// acumula sus deltas.
func TestApplyMovement_SnapshotCompartidoPorFecha(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	_, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeSupply, 10, dia1))
	require.NoError(t, err)
	_, err = svc.ApplyMovement(repo, spec(entity.CandidateTypeDemand, 3, dia1))
	require.NoError(t, err)

	all := partition(t, repo)
	stocks := filterStocks(all)
	require.Len(t, stocks, 1, "una fecha tiene a lo sumo un snapshot STOCK")
	assertQty(t, 7, stocks[0])

	assert.NoError(t, svc.VerifyPartition(repo, "P1", "W1"))
}

// Escenario C: un movimiento retroactivo ajusta su snapshot y todos los STOCK
// posteriores, sin tocar los anteriores.
func TestApplyMovement_RetroactivoPropagaSoloHaciaAdelante(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	_, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeSupply, 10, dia2))
	require.NoError(t, err)
	_, err = svc.ApplyMovement(repo, spec(entity.CandidateTypeDemand, 4, dia3))
	require.NoError(t, err)

	// Retroactivo: suministro de 5 el día 1.
	_, err = svc.ApplyMovement(repo, spec(entity.CandidateTypeSupply, 5, dia1))
	require.NoError(t, err)

	stocks := filterStocks(partition(t, repo))
	require.Len(t, stocks, 3)
	assertQty(t, 5, stocks[0])  // dia1: nuevo snapshot con base 0
	assertQty(t, 15, stocks[1]) // dia2: 10 + 5
	assertQty(t, 11, stocks[2]) // dia3: 6 + 5

	assert.NoError(t, svc.VerifyPartition(repo, "P1", "W1"))
}

// La demanda puede dejar el stock proyectado en negativo: el ledger registra el
// faltante, no lo rechaza.
func TestApplyMovement_StockNegativoPermitido(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	_, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeDemand, 8, dia1))
	require.NoError(t, err)

	stocks := filterStocks(partition(t, repo))
	require.Len(t, stocks, 1)
	assertQty(t, -8, stocks[0])
}

func TestApplyMovement_EntradasInvalidas(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	_, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeStock, 5, dia1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "STOCK no es un movimiento aplicable")

	_, err = svc.ApplyMovement(repo, spec(entity.CandidateTypeSupply, 0, dia1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero se rechaza")

	s := spec(entity.CandidateTypeSupply, 5, dia1)
	s.ProductID = ""
	_, err = svc.ApplyMovement(repo, s)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteMovement — reversa exacta
// ──────────────────────────────────────────────────────────────────────────────

// Eliminar un movimiento deja cada snapshot STOCK con el valor que tendría si
// el movimiento nunca hubiera existido.
func TestDeleteMovement_ReversaExacta(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	_, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeSupply, 10, dia1))
	require.NoError(t, err)
	dem, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeDemand, 3, dia2))
	require.NoError(t, err)
	_, err = svc.ApplyMovement(repo, spec(entity.CandidateTypeDemand, 2, dia3))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMovement(repo, dem.ID))

	stocks := filterStocks(partition(t, repo))
	require.Len(t, stocks, 3)
	assertQty(t, 10, stocks[0]) // dia1 intacto
	assertQty(t, 10, stocks[1]) // dia2 sin la demanda eliminada
	assertQty(t, 8, stocks[2])  // dia3: 10 - 2

	assert.NoError(t, svc.VerifyPartition(repo, "P1", "W1"))
}

// interleavingRepo simula un escritor concurrente: justo después de que
// DeleteMovement lee el máximo SeqNo de la partición, otro movimiento entra a
// la misma partición antes del borrado.
type interleavingRepo struct {
	repository.CandidateRepository
	inner    *memory.CandidateRepository
	injected bool
}

func (r *interleavingRepo) MaxSeqNo(productID, warehouseID string) (int64, error) {
	stale, err := r.CandidateRepository.MaxSeqNo(productID, warehouseID)
	if err != nil || r.injected {
		return stale, err
	}
	r.injected = true
	otro := &entity.Candidate{
		Type:        entity.CandidateTypeSupply,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Date:        dia3,
		Quantity:    decimal.NewFromInt(1),
	}
	if err := r.inner.Create(otro, stale); err != nil {
		return 0, err
	}
	return stale, nil
}

// Un borrado que corre contra una inserción concurrente en la misma partición
// debe detectarse y rechazarse: de otro modo la reversa reescribiría saldos
// STOCK calculados sobre una lectura obsoleta.
func TestDeleteMovement_InsercionConcurrenteDetectada(t *testing.T) {
	inner := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	dem, err := svc.ApplyMovement(inner, spec(entity.CandidateTypeDemand, 3, dia1))
	require.NoError(t, err)

	repo := &interleavingRepo{CandidateRepository: inner, inner: inner}
	err = svc.DeleteMovement(repo, dem.ID)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification,
		"la reversa debe exigir el mismo snapshot de partición que la inserción")

	sigue, err := inner.GetByID(dem.ID)
	require.NoError(t, err)
	assert.NotNil(t, sigue, "el movimiento sobrevive al borrado rechazado")
}

func TestDeleteMovement_Errores(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	assert.ErrorIs(t, svc.DeleteMovement(repo, "inexistente"), domain.ErrNotFound)

	_, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeSupply, 1, dia1))
	require.NoError(t, err)
	stocks := filterStocks(partition(t, repo))
	require.Len(t, stocks, 1)
	assert.ErrorIs(t, svc.DeleteMovement(repo, stocks[0].ID), domain.ErrInvalidInput,
		"los snapshots STOCK no se eliminan directamente")
}

// ──────────────────────────────────────────────────────────────────────────────
// VerifyPartition — detección de inconsistencias
// ──────────────────────────────────────────────────────────────────────────────

// Un STOCK manipulado por fuera del servicio rompe el saldo corrido y debe
// reportarse como violación de consistencia.
func TestVerifyPartition_SaldoRoto(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())

	_, err := svc.ApplyMovement(repo, spec(entity.CandidateTypeSupply, 10, dia1))
	require.NoError(t, err)

	stocks := filterStocks(partition(t, repo))
	require.Len(t, stocks, 1)
	require.NoError(t, repo.UpdateQuantity(stocks[0].ID, decimal.NewFromInt(99)))

	err = svc.VerifyPartition(repo, "P1", "W1")
	assert.ErrorIs(t, err, domain.ErrConsistencyViolation)
}

func TestVerifyPartition_ParticionVacia(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := dispo.NewStockCandidateService(testLogger())
	assert.NoError(t, svc.VerifyPartition(repo, "P1", "W1"), "partición vacía es consistente")
}

func filterStocks(cs []*entity.Candidate) []*entity.Candidate {
	var out []*entity.Candidate
	for _, c := range cs {
		if c.Type == entity.CandidateTypeStock {
			out = append(out, c)
		}
	}
	return out
}
