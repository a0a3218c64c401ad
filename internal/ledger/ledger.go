package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/gamezone/internal/models"
)

// Ledger is the authoritative order store. It owns every Order row and
// guarantees at most one active order per desk and per customer.
//
// Each (desk, mobile) session slot has its own mutex held across the
// whole read-modify-write in OpenOrReplace and Checkout, so two
// concurrent submissions for the same slot can never both observe "no
// active order". The partial unique indexes on the orders table back
// the same invariants at the storage level.
type Ledger struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs a Ledger on top of the given database handle.
func New(db *gorm.DB) *Ledger {
	return &Ledger{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockSession acquires the mutex for one (desk, mobile) session slot and
// returns its release func. Slot mutexes are never removed; the key space
// is bounded by desks × customers seen by this process.
func (l *Ledger) lockSession(deskNumber int, mobile string) func() {
	key := fmt.Sprintf("%d/%s", deskNumber, mobile)

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// FindActive returns the active order for a desk/customer pair, or nil if
// the customer has no open tab there.
func (l *Ledger) FindActive(deskNumber int, mobile string) (*models.Order, error) {
	return findActive(l.db, deskNumber, mobile)
}

// FindActiveByMobile returns the customer's active order regardless of
// desk, or nil. Used by clients to restore their session after a reload.
func (l *Ledger) FindActiveByMobile(mobile string) (*models.Order, error) {
	var order models.Order
	err := l.db.Preload("Items").
		Where("customer_mobile = ? AND status = ?", mobile, models.StatusActive).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindActiveByDesk returns the active order holding the desk regardless
// of customer, or nil if the desk is free.
func (l *Ledger) FindActiveByDesk(deskNumber int) (*models.Order, error) {
	var order models.Order
	err := l.db.Preload("Items").
		Where("desk_number = ? AND status = ?", deskNumber, models.StatusActive).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// OpenOrReplace submits the customer's full cart for a desk. If the
// customer already holds the active order there, the item list is
// replaced wholesale (the client always sends the complete cart) and the
// order time refreshed; otherwise a new active order is created. The
// total is always recomputed server-side from the items. The bool
// reports whether a new order was created rather than an existing one
// updated.
func (l *Ledger) OpenOrReplace(deskNumber int, customerName, mobile string, items []models.OrderItem) (*models.Order, bool, error) {
	if err := validateItems(items); err != nil {
		return nil, false, err
	}

	var total float64
	for i := range items {
		total += items[i].Price * float64(items[i].Quantity)
	}

	unlock := l.lockSession(deskNumber, mobile)
	defer unlock()

	var (
		orderID uuid.UUID
		created bool
	)
	err := l.db.Transaction(func(tx *gorm.DB) error {
		existing, err := findActive(tx, deskNumber, mobile)
		if err != nil {
			return err
		}

		if existing != nil {
			if err := tx.Where("order_id = ?", existing.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}

			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", existing.ID, models.StatusActive).
				Updates(map[string]interface{}{
					"total_amount": total,
					"order_time":   time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Closed underneath us by an admin force-free.
				return ErrNoActiveOrder
			}

			for i := range items {
				items[i].OrderID = existing.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}

			orderID = existing.ID
			return nil
		}

		// No open tab for this pair; make sure neither the desk nor the
		// customer is tied up elsewhere before creating one.
		var holder models.Order
		err = tx.Where("desk_number = ? AND status = ?", deskNumber, models.StatusActive).
			First(&holder).Error
		if err == nil {
			return ErrDeskOccupied
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("customer_mobile = ? AND status = ?", mobile, models.StatusActive).
			First(&holder).Error
		if err == nil {
			return ErrCustomerBusy
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		order := models.Order{
			DeskNumber:     deskNumber,
			CustomerName:   customerName,
			CustomerMobile: mobile,
			Items:          items,
			TotalAmount:    total,
			Status:         models.StatusActive,
			OrderTime:      time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a cross-process race on one of the active-order
				// unique indexes.
				return ErrDeskOccupied
			}
			return err
		}

		orderID = order.ID
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	var order models.Order
	if err := l.db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		return nil, false, err
	}
	return &order, created, nil
}

// Checkout closes the active order for a desk/customer pair, stamping the
// checkout time. Returns ErrNoActiveOrder when there is nothing to close.
// The transition is terminal; a closed order is immutable history.
func (l *Ledger) Checkout(deskNumber int, mobile string) (*models.Order, error) {
	unlock := l.lockSession(deskNumber, mobile)
	defer unlock()

	order, err := findActive(l.db, deskNumber, mobile)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNoActiveOrder
	}

	now, err := l.close(order.ID)
	if err != nil {
		return nil, err
	}
	if now == nil {
		return nil, ErrNoActiveOrder
	}

	order.Status = models.StatusCheckedOut
	order.CheckoutTime = now
	return order, nil
}

// ForceFree closes whatever active order holds the desk, regardless of
// customer. Returns (nil, nil) when the desk is already free; calling it
// repeatedly is harmless.
func (l *Ledger) ForceFree(deskNumber int) (*models.Order, error) {
	order, err := l.FindActiveByDesk(deskNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	now, err := l.close(order.ID)
	if err != nil {
		return nil, err
	}
	if now == nil {
		// Freed concurrently; same outcome as an already-free desk.
		return nil, nil
	}

	order.Status = models.StatusCheckedOut
	order.CheckoutTime = now
	return order, nil
}

// close performs the single conditional active→checked_out transition.
// A nil timestamp means the order was no longer active.
func (l *Ledger) close(orderID uuid.UUID) (*time.Time, error) {
	now := time.Now()
	res := l.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, models.StatusActive).
		Updates(map[string]interface{}{
			"status":        models.StatusCheckedOut,
			"checkout_time": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &now, nil
}

// ListAll returns every order, newest first, with items preloaded.
func (l *Ledger) ListAll() ([]models.Order, error) {
	var orders []models.Order
	if err := l.db.Preload("Items").
		Order("order_time desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func findActive(tx *gorm.DB, deskNumber int, mobile string) (*models.Order, error) {
	var order models.Order
	err := tx.Preload("Items").
		Where("desk_number = ? AND customer_mobile = ? AND status = ?",
			deskNumber, mobile, models.StatusActive).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func validateItems(items []models.OrderItem) error {
	if len(items) == 0 {
		return newValidationError("order must contain at least one item")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return newValidationError(fmt.Sprintf("item %q has invalid quantity %d", item.Name, item.Quantity))
		}
		if item.Price < 0 {
			return newValidationError(fmt.Sprintf("item %q has negative price", item.Name))
		}
	}
	return nil
}
