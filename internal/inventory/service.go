package inventory

import (
	"fmt"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
)

type DBLayer interface {
	GetItemByID(id int64) (*models.InventoryItem, error)
	ListItems() ([]models.InventoryItem, error)
	AddStock(name string, quantity int) (*models.InventoryItem, error)
	ConsumeStock(itemID int64, quantity int) error
	LowStock(threshold int) ([]models.InventoryItem, error)
	ListUsage() ([]models.InventoryUsage, error)
}

// Ledger is the only legal mutation path for stock quantities.
type Ledger struct {
	DB     DBLayer
	logger *logger.Logger
}

func NewLedger(db DBLayer, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.NewNop()
	}
	return &Ledger{DB: db, logger: log}
}

// Add increments the named item's stock, creating the item when absent.
// Zero is allowed so a new item can be registered empty.
func (l *Ledger) Add(name string, quantity int) (*models.InventoryItem, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("add %d: %w", quantity, models.ErrInvalidQuantity)
	}
	item, err := l.DB.AddStock(name, quantity)
	if err != nil {
		return nil, err
	}
	l.logger.LogInventory("ADD", item.ID, fmt.Sprintf("%q +%d, now %d", item.Name, quantity, item.Quantity))
	return item, nil
}

// Consume decrements stock and appends a usage record. Fails whole when the
// item does not hold enough; nothing changes in that case.
func (l *Ledger) Consume(itemID int64, quantity int) (*models.InventoryItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("consume %d: %w", quantity, models.ErrInvalidQuantity)
	}
	item, err := l.DB.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if quantity > item.Quantity {
		return nil, fmt.Errorf("consume %d of %q (have %d): %w", quantity, item.Name, item.Quantity, models.ErrInsufficientStock)
	}
	if err := l.DB.ConsumeStock(itemID, quantity); err != nil {
		return nil, err
	}
	item.Quantity -= quantity
	l.logger.LogInventory("CONSUME", item.ID, fmt.Sprintf("%q -%d, now %d", item.Name, quantity, item.Quantity))
	return item, nil
}

func (l *Ledger) ListItems() ([]models.InventoryItem, error) {
	return l.DB.ListItems()
}

// LowStockReport is a pure read over the current quantities.
func (l *Ledger) LowStockReport(threshold int) ([]models.InventoryItem, error) {
	return l.DB.LowStock(threshold)
}

func (l *Ledger) UsageReport() ([]models.InventoryUsage, error) {
	return l.DB.ListUsage()
}
