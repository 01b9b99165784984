package dispo

import (
	"context"

	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando el
// repositorio de candidatos atado a esa transacción. Garantiza que todos los
// candidatos y propagaciones de un mismo evento se confirmen o reviertan
// juntos, incluso cuando el evento toca dos particiones (orden de distribución).
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.CandidateRepository) error) error
}

// EventPublisher puerto de salida para eventos de dominio (faltante de stock,
// cobertura). El orquestador publica solo después de un commit exitoso.
type EventPublisher interface {
	Publish(evt any)
}

// EventSink acumulador de eventos de dominio dentro de una transacción.
// Los handlers agregan aquí; el orquestador publica tras el commit.
type EventSink interface {
	Add(evt any)
}

type eventBuffer struct {
	events []any
}

func (b *eventBuffer) Add(evt any) { b.events = append(b.events, evt) }

func (b *eventBuffer) reset() { b.events = b.events[:0] }
