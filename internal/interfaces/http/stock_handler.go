package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/application/dto"
)

// StockHandler expone la lectura de stock proyectado (protegido).
type StockHandler struct {
	available *dispo.AvailableStockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(available *dispo.AvailableStockUseCase) *StockHandler {
	return &StockHandler{available: available}
}

// Available devuelve el stock proyectado de un producto en una bodega a un
// instante dado (query params: product_id, warehouse_id, at; at por defecto
// es ahora).
func (h *StockHandler) Available(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	atStr := c.Query("at")

	at := time.Now()
	if atStr != "" {
		parsed, err := time.Parse(time.RFC3339, atStr)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", atStr)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetro at inválido"})
			}
		}
		at = parsed
	}

	qty, err := h.available.AvailableStockAt(c.Context(), productID, warehouseID, at)
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.JSON(dto.AvailableStockResponse{
		ProductID:   productID,
		WarehouseID: warehouseID,
		At:          at.Format(time.RFC3339),
		Qty:         qty.String(),
	})
}
