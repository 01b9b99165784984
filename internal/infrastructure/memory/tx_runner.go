package memory

import (
	"context"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

var _ dispo.TxRunner = (*TxRunner)(nil)

// TxRunner variante en memoria del runner transaccional: ejecuta el callback
// contra el repositorio compartido. No hay rollback real; la atomicidad la da
// el chequeo optimista de SeqNo más el reintento del orquestador, suficiente
// para tests y modo embebido.
//
// Precaución en modo embebido: un callback de varias intenciones que falla a
// mitad de camino con ErrConcurrentModification no revierte las escrituras ya
// hechas, y el reintento del orquestador las duplicaría. Con escritores
// concurrentes y eventos multi-intención (órdenes de distribución) usar el
// runner de PostgreSQL, que sí revierte.
type TxRunner struct {
	repo repository.CandidateRepository
}

// NewTxRunner construye el runner sobre el repositorio en memoria.
func NewTxRunner(repo repository.CandidateRepository) *TxRunner {
	return &TxRunner{repo: repo}
}

// Run ejecuta fn con el repositorio compartido, respetando la cancelación del ctx.
func (r *TxRunner) Run(ctx context.Context, fn func(repo repository.CandidateRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(r.repo)
}
