package entity

import "time"

// Product representa un producto o SKU planificable.
type Product struct {
	ID          string
	OrgID       string
	SKU         string // código único por organización
	Name        string
	UnitMeasure string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
