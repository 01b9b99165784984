package memory

import (
	"sync"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
)

var _ dispo.EventPublisher = (*EventPublisher)(nil)

// EventPublisher bus de eventos de dominio en memoria: acumula lo publicado y
// lo entrega a los suscriptores registrados. Los módulos de planificación que
// reaccionan (p.ej. generando órdenes de distribución) se suscriben aquí.
type EventPublisher struct {
	mu          sync.Mutex
	published   []any
	subscribers []func(evt any)
}

// NewEventPublisher construye el bus vacío.
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{}
}

// Subscribe registra un consumidor; recibe cada evento publicado después del commit.
func (p *EventPublisher) Subscribe(fn func(evt any)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, fn)
}

// Publish entrega el evento a todos los suscriptores y lo retiene para inspección.
func (p *EventPublisher) Publish(evt any) {
	p.mu.Lock()
	subs := make([]func(evt any), len(p.subscribers))
	copy(subs, p.subscribers)
	p.published = append(p.published, evt)
	p.mu.Unlock()

	for _, fn := range subs {
		fn(evt)
	}
}

// Published devuelve los eventos publicados hasta ahora (para tests).
func (p *EventPublisher) Published() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]any, len(p.published))
	copy(out, p.published)
	return out
}
