package memory

import (
	"sync"

	"github.com/jhoicas/material-dispo/internal/domain/entity"
	"github.com/jhoicas/material-dispo/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)
var _ repository.WarehouseRepository = (*WarehouseRepository)(nil)

// ProductRepository catálogo de productos en memoria (tests / modo embebido).
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]entity.Product
}

// NewProductRepository construye el catálogo vacío.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: map[string]entity.Product{}}
}

// Add registra un producto.
func (r *ProductRepository) Add(p entity.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
}

// GetByID devuelve el producto o nil si no existe.
func (r *ProductRepository) GetByID(id string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

// WarehouseRepository catálogo de bodegas en memoria (tests / modo embebido).
type WarehouseRepository struct {
	mu         sync.RWMutex
	warehouses map[string]entity.Warehouse
}

// NewWarehouseRepository construye el catálogo vacío.
func NewWarehouseRepository() *WarehouseRepository {
	return &WarehouseRepository{warehouses: map[string]entity.Warehouse{}}
}

// Add registra una bodega.
func (r *WarehouseRepository) Add(w entity.Warehouse) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[w.ID] = w
}

// GetByID devuelve la bodega o nil si no existe.
func (r *WarehouseRepository) GetByID(id string) (*entity.Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if w, ok := r.warehouses[id]; ok {
		return &w, nil
	}
	return nil, nil
}
