package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/material-dispo/internal/application/dispo"
	"github.com/jhoicas/material-dispo/internal/application/event"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Facade         *event.MaterialEventListenerFacade
	AvailableStock *dispo.AvailableStockUseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Eventos de negocio entrantes (protegido)
	events := protected.Group("/events")
	eventHandler := NewEventHandler(deps.Facade)
	events.Post("/shipment-schedule", eventHandler.ShipmentSchedule)
	events.Post("/distribution-order", eventHandler.DistributionOrder)
	events.Post("/production-order", eventHandler.ProductionOrder)
	events.Post("/forecast", eventHandler.Forecast)
	events.Post("/transaction", eventHandler.Transaction)

	// Lectura de stock proyectado (protegido)
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.AvailableStock)
	stock.Get("/available", stockHandler.Available)
}
