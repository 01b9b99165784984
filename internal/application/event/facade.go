package event

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/domain"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
	"github.com/jhoicas/material-dispo/pkg/logger"
)

// MaterialEventListenerFacade punto de entrada de los eventos de negocio que
// alimentan el ledger. Valida el evento (antes de escribir candidato alguno),
// lo enruta a su handler con un switch explícito por tipo y ejecuta todo el
// procesamiento del evento —todas sus intenciones, en ambas particiones si
// aplica— en una sola transacción con reintento acotado.
type MaterialEventListenerFacade struct {
	changeSvc    *dispo.CandidateChangeService
	shipment     *ShipmentScheduleCreatedHandler
	distribution *DistributionOrderHandler
	production   *ProductionOrderHandler
	forecast     *ForecastCreatedHandler
	transaction  *TransactionCreatedHandler

	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	log           *logger.Logger
}

// NewMaterialEventListenerFacade arma la fachada con todos los handlers.
func NewMaterialEventListenerFacade(
	changeSvc *dispo.CandidateChangeService,
	shipment *ShipmentScheduleCreatedHandler,
	distribution *DistributionOrderHandler,
	production *ProductionOrderHandler,
	forecast *ForecastCreatedHandler,
	transaction *TransactionCreatedHandler,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	log *logger.Logger,
) *MaterialEventListenerFacade {
	return &MaterialEventListenerFacade{
		changeSvc:     changeSvc,
		shipment:      shipment,
		distribution:  distribution,
		production:    production,
		forecast:      forecast,
		transaction:   transaction,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		log:           log,
	}
}

// OnEvent procesa un evento de negocio. Mismo contenido de evento produce
// siempre el mismo conjunto de intenciones; la de-duplicación de eventos ya
// procesados es responsabilidad del caller.
func (f *MaterialEventListenerFacade) OnEvent(ctx context.Context, evt any) error {
	switch e := evt.(type) {
	case entity.ShipmentScheduleCreatedEvent:
		if err := f.validate(e.ProductID, e.Date, e.Qty, true, e.WarehouseID); err != nil {
			return err
		}
		return f.run(ctx, "shipment_schedule_created", func(repo repository.CandidateRepository, sink dispo.EventSink) error {
			return f.shipment.Handle(repo, sink, e)
		})

	case entity.DistributionOrderEvent:
		if e.FromWarehouseID == e.ToWarehouseID {
			return fmt.Errorf("%w: bodega origen y destino deben ser distintas", domain.ErrInvalidInput)
		}
		if err := f.validate(e.ProductID, e.Date, e.Qty, true, e.FromWarehouseID, e.ToWarehouseID); err != nil {
			return err
		}
		return f.run(ctx, "distribution_order_advised_or_created", func(repo repository.CandidateRepository, sink dispo.EventSink) error {
			return f.distribution.Handle(repo, sink, e)
		})

	case entity.ProductionOrderEvent:
		if err := f.validate(e.ProductID, e.Date, e.Qty, true, e.WarehouseID); err != nil {
			return err
		}
		return f.run(ctx, "production_order_advised_or_created", func(repo repository.CandidateRepository, sink dispo.EventSink) error {
			return f.production.Handle(repo, sink, e)
		})

	case entity.ForecastCreatedEvent:
		if err := f.validate(e.ProductID, e.Date, e.Qty, true, e.WarehouseID); err != nil {
			return err
		}
		return f.run(ctx, "forecast_created", func(repo repository.CandidateRepository, sink dispo.EventSink) error {
			return f.forecast.Handle(repo, sink, e)
		})

	case entity.TransactionCreatedEvent:
		if err := f.validate(e.ProductID, e.Date, e.Qty, false, e.WarehouseID); err != nil {
			return err
		}
		return f.run(ctx, "transaction_created", func(repo repository.CandidateRepository, sink dispo.EventSink) error {
			return f.transaction.Handle(repo, sink, e)
		})

	default:
		return fmt.Errorf("%w: evento no soportado %T", domain.ErrInvalidInput, evt)
	}
}

func (f *MaterialEventListenerFacade) run(ctx context.Context, kind string, fn func(repo repository.CandidateRepository, sink dispo.EventSink) error) error {
	err := f.changeSvc.Execute(ctx, fn)
	if err != nil {
		f.log.Error().Err(err).Str("event", kind).Msg("evento rechazado")
		return err
	}
	f.log.Info().Str("event", kind).Msg("evento aplicado al ledger")
	return nil
}

// validate rechaza el evento antes de crear candidato alguno: producto y
// bodega(s) deben existir, la fecha ser válida y la cantidad positiva
// (o distinta de cero para transacciones, cuyo signo decide el tipo).
func (f *MaterialEventListenerFacade) validate(productID string, date time.Time, qty decimal.Decimal, qtyPositive bool, warehouseIDs ...string) error {
	if productID == "" {
		return fmt.Errorf("%w: product_id vacío", domain.ErrInvalidInput)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: fecha vacía", domain.ErrInvalidInput)
	}
	if qtyPositive && !qty.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser positiva", domain.ErrInvalidInput)
	}
	if !qtyPositive && qty.IsZero() {
		return fmt.Errorf("%w: la cantidad no puede ser cero", domain.ErrInvalidInput)
	}

	p, err := f.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: producto %s desconocido", domain.ErrInvalidInput, productID)
	}
	for _, id := range warehouseIDs {
		if id == "" {
			return fmt.Errorf("%w: warehouse_id vacío", domain.ErrInvalidInput)
		}
		w, err := f.warehouseRepo.GetByID(id)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("%w: bodega %s desconocida", domain.ErrInvalidInput, id)
		}
	}
	return nil
}
