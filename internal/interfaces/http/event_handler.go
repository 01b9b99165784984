package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/material-dispo/internal/application/dto"
	"github.com/jhoicas/material-dispo/internal/application/event"
	"github.com/jhoicas/material-dispo/internal/domain"
	"github.com/jhoicas/material-dispo/internal/domain/entity"
)

// EventHandler recibe los eventos de negocio por HTTP y los entrega a la
// fachada de eventos de material (protegido).
type EventHandler struct {
	facade *event.MaterialEventListenerFacade
}

// NewEventHandler construye el handler.
func NewEventHandler(facade *event.MaterialEventListenerFacade) *EventHandler {
	return &EventHandler{facade: facade}
}

// ShipmentSchedule registra una agenda de despacho (demanda).
func (h *EventHandler) ShipmentSchedule(c *fiber.Ctx) error {
	var in dto.ShipmentScheduleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, qty, err := parseDateQty(in.Date, in.Qty)
	if err != nil {
		return writeDomainError(c, err)
	}
	evt := entity.ShipmentScheduleCreatedEvent{
		EventDescriptor: descriptor(c, in.ClientID),
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		BPartnerID:      in.BPartnerID,
		Date:            date,
		Qty:             qty,
	}
	if err := h.facade.OnEvent(c.Context(), evt); err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "evento aplicado"})
}

// DistributionOrder registra una orden de distribución entre bodegas.
func (h *EventHandler) DistributionOrder(c *fiber.Ctx) error {
	var in dto.DistributionOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, qty, err := parseDateQty(in.Date, in.Qty)
	if err != nil {
		return writeDomainError(c, err)
	}
	evt := entity.DistributionOrderEvent{
		EventDescriptor: descriptor(c, in.ClientID),
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		BPartnerID:      in.BPartnerID,
		Date:            date,
		Qty:             qty,
		PlantID:         in.PlantID,
		NetworkLineID:   in.NetworkLineID,
	}
	if err := h.facade.OnEvent(c.Context(), evt); err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "evento aplicado"})
}

// ProductionOrder registra una orden de producción (suministro).
func (h *EventHandler) ProductionOrder(c *fiber.Ctx) error {
	var in dto.ProductionOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, qty, err := parseDateQty(in.Date, in.Qty)
	if err != nil {
		return writeDomainError(c, err)
	}
	evt := entity.ProductionOrderEvent{
		EventDescriptor: descriptor(c, in.ClientID),
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Date:            date,
		Qty:             qty,
		PlanID:          in.PlanID,
	}
	if err := h.facade.OnEvent(c.Context(), evt); err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "evento aplicado"})
}

// Forecast registra un pronóstico de demanda.
func (h *EventHandler) Forecast(c *fiber.Ctx) error {
	var in dto.ForecastRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, qty, err := parseDateQty(in.Date, in.Qty)
	if err != nil {
		return writeDomainError(c, err)
	}
	evt := entity.ForecastCreatedEvent{
		EventDescriptor: descriptor(c, in.ClientID),
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Date:            date,
		Qty:             qty,
	}
	if err := h.facade.OnEvent(c.Context(), evt); err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "evento aplicado"})
}

// Transaction registra una transacción de inventario sin contraparte.
func (h *EventHandler) Transaction(c *fiber.Ctx) error {
	var in dto.TransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, qty, err := parseDateQty(in.Date, in.Qty)
	if err != nil {
		return writeDomainError(c, err)
	}
	evt := entity.TransactionCreatedEvent{
		EventDescriptor: descriptor(c, in.ClientID),
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		Date:            date,
		Qty:             qty,
	}
	if err := h.facade.OnEvent(c.Context(), evt); err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "evento aplicado"})
}

// descriptor arma el EventDescriptor del evento: org del token, client del
// cuerpo (opcional, para instalaciones multi-cliente).
func descriptor(c *fiber.Ctx, clientID string) entity.EventDescriptor {
	return entity.EventDescriptor{
		ClientID: clientID,
		OrgID:    GetOrgID(c),
	}
}

// parseDateQty convierte fecha RFC 3339 (o YYYY-MM-DD) y cantidad decimal.
func parseDateQty(dateStr, qtyStr string) (time.Time, decimal.Decimal, error) {
	if dateStr == "" {
		return time.Time{}, decimal.Zero, fmt.Errorf("%w: date requerido", domain.ErrInvalidInput)
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return time.Time{}, decimal.Zero, fmt.Errorf("%w: fecha inválida %q", domain.ErrInvalidInput, dateStr)
		}
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return time.Time{}, decimal.Zero, fmt.Errorf("%w: cantidad inválida %q", domain.ErrInvalidInput, qtyStr)
	}
	return date, qty, nil
}

// writeDomainError traduce errores de dominio a estados HTTP.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrLedgerContention):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONTENTION", Message: "la partición está siendo modificada, reintente"})
	case errors.Is(err, domain.ErrConsistencyViolation):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "CONSISTENCY", Message: "inconsistencia detectada en el ledger"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
