package dispo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/domain"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
	"github.com/jhoicas/material-dispo/pkg/logger"
)

// CandidateIntent intención de crear/actualizar un candidato del ledger.
// La produce un handler de evento y la resuelve el handler registrado para su
// tipo dentro del scope transaccional del orquestador.
type CandidateIntent struct {
	Type         entity.CandidateType
	ProductID    string
	WarehouseID  string
	BPartnerID   string
	Date         time.Time
	Qty          decimal.Decimal
	GroupID      string
	BusinessCase entity.BusinessCase
	ClientID     string
	OrgID        string
}

// CandidateHandler resuelve una intención de su(s) tipo(s) de candidato.
// Corre dentro de la transacción del orquestador; los eventos de dominio que
// quiera emitir van al sink y se publican solo después del commit.
type CandidateHandler interface {
	Handles() []entity.CandidateType
	OnIntent(repo repository.CandidateRepository, sink EventSink, intent CandidateIntent) (*entity.Candidate, error)
}

// RetryConfig política de reintento ante modificación concurrente de una
// partición: reintentos acotados con backoff exponencial, nunca spin infinito.
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryConfig valores usados cuando la configuración no define otros.
var DefaultRetryConfig = RetryConfig{MaxAttempts: 5, Backoff: 20 * time.Millisecond}

// CandidateChangeService orquestador de cambios de candidatos: punto de
// entrada único que despacha por tipo a un registro explícito de handlers
// (armado al arranque, sin cableado reflexivo), envuelve cada unidad de
// trabajo en una transacción y publica los eventos de dominio tras el commit.
type CandidateChangeService struct {
	tx        TxRunner
	publisher EventPublisher
	handlers  map[entity.CandidateType]CandidateHandler
	retry     RetryConfig
	log       *logger.Logger
}

// NewCandidateChangeService construye el orquestador con su registro de handlers.
func NewCandidateChangeService(tx TxRunner, publisher EventPublisher, retry RetryConfig, log *logger.Logger, handlers ...CandidateHandler) *CandidateChangeService {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = DefaultRetryConfig.MaxAttempts
	}
	if retry.Backoff <= 0 {
		retry.Backoff = DefaultRetryConfig.Backoff
	}
	registry := make(map[entity.CandidateType]CandidateHandler)
	for _, h := range handlers {
		for _, t := range h.Handles() {
			registry[t] = h
		}
	}
	return &CandidateChangeService{tx: tx, publisher: publisher, handlers: registry, retry: retry, log: log}
}

// OnCandidateIntent aplica una intención aislada en su propia transacción.
func (s *CandidateChangeService) OnCandidateIntent(ctx context.Context, intent CandidateIntent) (*entity.Candidate, error) {
	var created *entity.Candidate
	err := s.Execute(ctx, func(repo repository.CandidateRepository, sink EventSink) error {
		c, err := s.ApplyIntent(repo, sink, intent)
		created = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ApplyIntent despacha la intención al handler de su tipo dentro de la
// transacción del caller. Lo usan los handlers de eventos que necesitan varias
// intenciones en una sola unidad atómica (órdenes de distribución).
func (s *CandidateChangeService) ApplyIntent(repo repository.CandidateRepository, sink EventSink, intent CandidateIntent) (*entity.Candidate, error) {
	h, ok := s.handlers[intent.Type]
	if !ok {
		return nil, fmt.Errorf("%w: sin handler para candidatos %q", domain.ErrInvalidInput, intent.Type)
	}
	return h.OnIntent(repo, sink, intent)
}

// Execute corre fn dentro de una transacción con reintento acotado ante
// domain.ErrConcurrentModification; al agotar los intentos reporta
// domain.ErrLedgerContention. Los eventos agregados al sink se publican
// únicamente después de un commit exitoso.
func (s *CandidateChangeService) Execute(ctx context.Context, fn func(repo repository.CandidateRepository, sink EventSink) error) error {
	buf := &eventBuffer{}
	for attempt := 0; attempt < s.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := s.waitBackoff(ctx, attempt); err != nil {
				return err
			}
		}

		buf.reset()
		err := s.tx.Run(ctx, func(repo repository.CandidateRepository) error {
			return fn(repo, buf)
		})
		if errors.Is(err, domain.ErrConcurrentModification) {
			s.log.Warn().Int("attempt", attempt+1).Msg("partición modificada por otro escritor; reintentando")
			continue
		}
		if err != nil {
			return err
		}

		for _, evt := range buf.events {
			s.publisher.Publish(evt)
		}
		return nil
	}
	return fmt.Errorf("%w: %d intentos agotados", domain.ErrLedgerContention, s.retry.MaxAttempts)
}

// maxBackoffShift acota la espera a backoff * 2^10; con más intentos el
// desplazamiento desbordaría el time.Duration.
const maxBackoffShift = 10

// waitBackoff espera backoff * 2^(attempt-1) respetando la cancelación del ctx.
func (s *CandidateChangeService) waitBackoff(ctx context.Context, attempt int) error {
	shift := attempt - 1
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	wait := s.retry.Backoff << shift
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
