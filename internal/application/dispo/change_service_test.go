package dispo_test

import (
	"context"
	"errors"
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
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// newChangeService arma el orquestador completo sobre el store en memoria.
func newChangeService(repo *memory.CandidateRepository, publisher *memory.EventPublisher, retry dispo.RetryConfig) *dispo.CandidateChangeService {
	stockSvc := dispo.NewStockCandidateService(testLogger())
	evaluator := dispo.NewSupplyProposalEvaluator()
	return dispo.NewCandidateChangeService(
		memory.NewTxRunner(repo),
		publisher,
		retry,
		testLogger(),
		dispo.NewDemandCandidateHandler(stockSvc),
		dispo.NewSupplyCandidateHandler(stockSvc, evaluator),
		dispo.NewUnrelatedMovementHandler(stockSvc),
	)
}

func intent(typ entity.CandidateType, qty int64, date time.Time) dispo.CandidateIntent {
	return dispo.CandidateIntent{
		Type:        typ,
		ProductID:   "P1",
		WarehouseID: "W1",
		Date:        date,
		Qty:         decimal.NewFromInt(qty),
	}
}

// contentiousTxRunner simula una partición en disputa permanente: cada intento
// termina en modificación concurrente.
type contentiousTxRunner struct {
	attempts int
}

func (r *contentiousTxRunner) Run(_ context.Context, _ func(repo repository.CandidateRepository) error) error {
	r.attempts++
	return domain.ErrConcurrentModification
}

// failingHandler agrega un evento al sink y luego falla: nada debe publicarse.
type failingHandler struct{}

func (failingHandler) Handles() []entity.CandidateType {
	return []entity.CandidateType{entity.CandidateTypeDemand}
}

func (failingHandler) OnIntent(_ repository.CandidateRepository, sink dispo.EventSink, _ dispo.CandidateIntent) (*entity.Candidate, error) {
	sink.Add(entity.SupplyRequiredEvent{ProductID: "P1"})
	return nil, errors.New("fallo simulado del handler")
}

// ──────────────────────────────────────────────────────────────────────────────
// Despacho por registro explícito
// ──────────────────────────────────────────────────────────────────────────────

func TestOnCandidateIntent_DespachaAlHandlerDelTipo(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := newChangeService(repo, memory.NewEventPublisher(), dispo.DefaultRetryConfig)

	created, err := svc.OnCandidateIntent(context.Background(), intent(entity.CandidateTypeDemand, 5, dia1))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, entity.CandidateTypeDemand, created.Type)
	assert.Positive(t, created.SeqNo)

	all, err := repo.Query(repository.CandidateQuery{ProductID: "P1", WarehouseID: "W1"})
	require.NoError(t, err)
	assert.Len(t, all, 2, "demanda + snapshot STOCK")
}

func TestOnCandidateIntent_TipoSinHandler(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := newChangeService(repo, memory.NewEventPublisher(), dispo.DefaultRetryConfig)

	_, err := svc.OnCandidateIntent(context.Background(), intent(entity.CandidateTypeStock, 5, dia1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"STOCK es derivado: nunca llega como intención y no tiene handler")
}

// Un suministro sin grupo se enlaza a la demanda abierta más antigua y el
// par queda compartiendo group_id.
func TestOnCandidateIntent_SuministroEnlazaDemandaAbierta(t *testing.T) {
	repo := memory.NewCandidateRepository()
	svc := newChangeService(repo, memory.NewEventPublisher(), dispo.DefaultRetryConfig)
	ctx := context.Background()

	dem, err := svc.OnCandidateIntent(ctx, intent(entity.CandidateTypeDemand, 10, dia1))
	require.NoError(t, err)
	sup, err := svc.OnCandidateIntent(ctx, intent(entity.CandidateTypeSupply, 10, dia2))
	require.NoError(t, err)

	require.NotEmpty(t, sup.GroupID, "el suministro debe quedar agrupado")

	pair, err := repo.FindByGroupID(sup.GroupID)
	require.NoError(t, err)
	require.Len(t, pair, 2, "demanda y suministro comparten group_id")
	assert.Equal(t, dem.ID, pair[0].ID)
	assert.Equal(t, sup.ID, pair[1].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reintento acotado y contención
// ──────────────────────────────────────────────────────────────────────────────

func TestExecute_ContencionAgotaReintentos(t *testing.T) {
	runner := &contentiousTxRunner{}
	svc := dispo.NewCandidateChangeService(
		runner,
		memory.NewEventPublisher(),
		dispo.RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond},
		testLogger(),
	)

	err := svc.Execute(context.Background(), func(_ repository.CandidateRepository, _ dispo.EventSink) error {
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrLedgerContention)
	assert.Equal(t, 3, runner.attempts, "exactamente MaxAttempts intentos, nunca spin infinito")
}

// Con muchos intentos configurados el backoff exponencial se acota en vez de
// desbordar time.Duration (un desplazamiento sin tope produciría esperas
// negativas o de años).
func TestExecute_BackoffAcotadoConMuchosIntentos(t *testing.T) {
	runner := &contentiousTxRunner{}
	svc := dispo.NewCandidateChangeService(
		runner,
		memory.NewEventPublisher(),
		dispo.RetryConfig{MaxAttempts: 70, Backoff: time.Nanosecond},
		testLogger(),
	)

	done := make(chan error, 1)
	go func() {
		done <- svc.Execute(context.Background(), func(_ repository.CandidateRepository, _ dispo.EventSink) error {
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrLedgerContention)
		assert.Equal(t, 70, runner.attempts)
	case <-time.After(5 * time.Second):
		t.Fatal("el backoff no está acotado: los reintentos no terminan en tiempo razonable")
	}
}

func TestExecute_CancelacionDuranteBackoff(t *testing.T) {
	runner := &contentiousTxRunner{}
	svc := dispo.NewCandidateChangeService(
		runner,
		memory.NewEventPublisher(),
		dispo.RetryConfig{MaxAttempts: 5, Backoff: time.Minute},
		testLogger(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.Execute(ctx, func(_ repository.CandidateRepository, _ dispo.EventSink) error {
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled, "el backoff respeta la cancelación del contexto")
	assert.Equal(t, 1, runner.attempts)
}

// ──────────────────────────────────────────────────────────────────────────────
// Publicación post-commit
// ──────────────────────────────────────────────────────────────────────────────

// Una demanda que deja el stock proyectado en negativo emite SupplyRequiredEvent,
// pero solo después del commit.
func TestExecute_FaltanteEmiteEventoTrasCommit(t *testing.T) {
	repo := memory.NewCandidateRepository()
	publisher := memory.NewEventPublisher()
	svc := newChangeService(repo, publisher, dispo.DefaultRetryConfig)

	dem, err := svc.OnCandidateIntent(context.Background(), intent(entity.CandidateTypeDemand, 7, dia1))
	require.NoError(t, err)

	published := publisher.Published()
	require.Len(t, published, 1)
	evt, ok := published[0].(entity.SupplyRequiredEvent)
	require.True(t, ok, "el evento publicado debe ser SupplyRequiredEvent")
	assert.Equal(t, "P1", evt.ProductID)
	assert.Equal(t, "W1", evt.WarehouseID)
	assert.Equal(t, dem.ID, evt.DemandID)
	assert.True(t, decimal.NewFromInt(7).Equal(evt.Qty), "el faltante se reporta en positivo")
}

// Si la transacción falla, los eventos acumulados en el sink se descartan.
func TestExecute_TransaccionFallidaNoPublica(t *testing.T) {
	repo := memory.NewCandidateRepository()
	publisher := memory.NewEventPublisher()
	svc := dispo.NewCandidateChangeService(
		memory.NewTxRunner(repo),
		publisher,
		dispo.DefaultRetryConfig,
		testLogger(),
		failingHandler{},
	)

	_, err := svc.OnCandidateIntent(context.Background(), intent(entity.CandidateTypeDemand, 5, dia1))
	require.Error(t, err)
	assert.Empty(t, publisher.Published(), "sin commit no hay publicación")
}

// Demanda cubierta por stock existente: no hay faltante y no se emite evento.
func TestExecute_DemandaCubiertaNoEmiteEvento(t *testing.T) {
	repo := memory.NewCandidateRepository()
	publisher := memory.NewEventPublisher()
	svc := newChangeService(repo, publisher, dispo.DefaultRetryConfig)
	ctx := context.Background()

	_, err := svc.OnCandidateIntent(ctx, intent(entity.CandidateTypeUnrelatedIncrease, 10, dia1))
	require.NoError(t, err)
	_, err = svc.OnCandidateIntent(ctx, intent(entity.CandidateTypeDemand, 4, dia2))
	require.NoError(t, err)

	assert.Empty(t, publisher.Published(), "stock suficiente: ningún SupplyRequiredEvent")
}
