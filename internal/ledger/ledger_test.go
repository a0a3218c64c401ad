package ledger

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/gamezone/internal/database"
	"github.com/example/gamezone/internal/models"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return New(db)
}

func cola(qty int) models.OrderItem {
	return models.OrderItem{ProductID: 5, Name: "Cola", Price: 60, Quantity: qty}
}

func fries(qty int) models.OrderItem {
	return models.OrderItem{ProductID: 6, Name: "Fries", Price: 120, Quantity: qty}
}

func countActive(t *testing.T, l *Ledger, deskNumber int) int64 {
	t.Helper()
	var count int64
	require.NoError(t, l.db.Model(&models.Order{}).
		Where("desk_number = ? AND status = ?", deskNumber, models.StatusActive).
		Count(&count).Error)
	return count
}

func TestOpenOrReplaceCreatesOrder(t *testing.T) {
	l := newTestLedger(t)

	order, created, err := l.OpenOrReplace(3, "Ravi", "9000000001", []models.OrderItem{cola(2)})
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, models.StatusActive, order.Status)
	assert.Equal(t, 3, order.DeskNumber)
	assert.Equal(t, float64(120), order.TotalAmount)
	assert.Len(t, order.Items, 1)
	assert.Nil(t, order.CheckoutTime)
	assert.False(t, order.OrderTime.IsZero())
}

func TestOpenOrReplaceReplacesCartWholesale(t *testing.T) {
	l := newTestLedger(t)

	first, _, err := l.OpenOrReplace(3, "Ravi", "9000000001", []models.OrderItem{cola(2)})
	require.NoError(t, err)

	second, created, err := l.OpenOrReplace(3, "Ravi", "9000000001", []models.OrderItem{cola(2), fries(1)})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "resubmission must update the same order")
	assert.Equal(t, float64(240), second.TotalAmount)
	assert.Len(t, second.Items, 2)
	assert.EqualValues(t, 1, countActive(t, l, 3))
}

func TestOpenOrReplaceIsIdempotent(t *testing.T) {
	l := newTestLedger(t)

	items := []models.OrderItem{cola(2), fries(1)}
	first, _, err := l.OpenOrReplace(4, "Ravi", "9000000001", items)
	require.NoError(t, err)

	second, created, err := l.OpenOrReplace(4, "Ravi", "9000000001", []models.OrderItem{cola(2), fries(1)})
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalAmount, second.TotalAmount)
	assert.Len(t, second.Items, 2)
	assert.EqualValues(t, 1, countActive(t, l, 4))
}

func TestOpenOrReplaceRecomputesTotal(t *testing.T) {
	l := newTestLedger(t)

	// The caller-declared total never reaches the ledger; whatever the
	// client believed, the stored total is price×quantity over the items.
	order, _, err := l.OpenOrReplace(1, "Ravi", "9000000001", []models.OrderItem{cola(3), fries(2)})
	require.NoError(t, err)
	assert.Equal(t, float64(3*60+2*120), order.TotalAmount)
}

func TestOpenOrReplaceValidation(t *testing.T) {
	l := newTestLedger(t)

	var verr *ValidationError

	_, _, err := l.OpenOrReplace(1, "Ravi", "9000000001", nil)
	require.ErrorAs(t, err, &verr)

	_, _, err = l.OpenOrReplace(1, "Ravi", "9000000001", []models.OrderItem{cola(0)})
	require.ErrorAs(t, err, &verr)

	_, _, err = l.OpenOrReplace(1, "Ravi", "9000000001", []models.OrderItem{
		{ProductID: 9, Name: "Ghost", Price: -5, Quantity: 1},
	})
	require.ErrorAs(t, err, &verr)

	assert.EqualValues(t, 0, countActive(t, l, 1))
}

func TestOpenOrReplaceDeskOccupiedByOtherCustomer(t *testing.T) {
	l := newTestLedger(t)

	_, _, err := l.OpenOrReplace(2, "Ravi", "9000000001", []models.OrderItem{cola(1)})
	require.NoError(t, err)

	_, _, err = l.OpenOrReplace(2, "Priya", "9000000002", []models.OrderItem{fries(1)})
	assert.ErrorIs(t, err, ErrDeskOccupied)
	assert.EqualValues(t, 1, countActive(t, l, 2))
}

func TestOpenOrReplaceCustomerBusyAtAnotherDesk(t *testing.T) {
	l := newTestLedger(t)

	_, _, err := l.OpenOrReplace(2, "Ravi", "9000000001", []models.OrderItem{cola(1)})
	require.NoError(t, err)

	_, _, err = l.OpenOrReplace(5, "Ravi", "9000000001", []models.OrderItem{fries(1)})
	assert.ErrorIs(t, err, ErrCustomerBusy)
}

func TestCheckoutIsTerminal(t *testing.T) {
	l := newTestLedger(t)

	_, _, err := l.OpenOrReplace(3, "Ravi", "9000000001", []models.OrderItem{cola(2), fries(1)})
	require.NoError(t, err)

	order, err := l.Checkout(3, "9000000001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, order.Status)
	require.NotNil(t, order.CheckoutTime)
	assert.Equal(t, float64(240), order.TotalAmount, "total must survive checkout")

	_, err = l.Checkout(3, "9000000001")
	assert.ErrorIs(t, err, ErrNoActiveOrder)

	active, err := l.FindActive(3, "9000000001")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestCheckoutWrongSlot(t *testing.T) {
	l := newTestLedger(t)

	_, _, err := l.OpenOrReplace(3, "Ravi", "9000000001", []models.OrderItem{cola(1)})
	require.NoError(t, err)

	// Wrong desk and wrong mobile both have nothing to close.
	_, err = l.Checkout(4, "9000000001")
	assert.ErrorIs(t, err, ErrNoActiveOrder)

	_, err = l.Checkout(3, "9000000002")
	assert.ErrorIs(t, err, ErrNoActiveOrder)
}

func TestForceFreeClosesAnyCustomersOrder(t *testing.T) {
	l := newTestLedger(t)

	_, _, err := l.OpenOrReplace(7, "Priya", "9000000002", []models.OrderItem{cola(1)})
	require.NoError(t, err)

	order, err := l.ForceFree(7)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.StatusCheckedOut, order.Status)
	assert.Equal(t, "9000000002", order.CustomerMobile)
	require.NotNil(t, order.CheckoutTime)

	active, err := l.FindActive(7, "9000000002")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestForceFreeIdempotent(t *testing.T) {
	l := newTestLedger(t)

	var count int64
	require.NoError(t, l.db.Model(&models.Order{}).Count(&count).Error)

	order, err := l.ForceFree(9)
	require.NoError(t, err)
	assert.Nil(t, order)

	order, err = l.ForceFree(9)
	require.NoError(t, err)
	assert.Nil(t, order)

	var after int64
	require.NoError(t, l.db.Model(&models.Order{}).Count(&after).Error)
	assert.Equal(t, count, after, "force-freeing a free desk must not create rows")
}

func TestReopenDeskAfterCheckout(t *testing.T) {
	l := newTestLedger(t)

	_, _, err := l.OpenOrReplace(3, "Ravi", "9000000001", []models.OrderItem{cola(1)})
	require.NoError(t, err)
	_, err = l.Checkout(3, "9000000001")
	require.NoError(t, err)

	// Desk is free again; a different customer can open a session there.
	order, created, err := l.OpenOrReplace(3, "Priya", "9000000002", []models.OrderItem{fries(1)})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.StatusActive, order.Status)
	assert.EqualValues(t, 1, countActive(t, l, 3))
}

func TestConcurrentSubmitsSameSlot(t *testing.T) {
	l := newTestLedger(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		qty := i%4 + 1
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Disjoint carts; each goroutine owns its slice since the
			// ledger writes item rows from it.
			_, _, err := l.OpenOrReplace(5, "Ravi", "9000000001", []models.OrderItem{cola(qty)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, countActive(t, l, 5), "concurrent submissions must never duplicate the active row")

	order, err := l.FindActive(5, "9000000001")
	require.NoError(t, err)
	require.NotNil(t, order)
	require.Len(t, order.Items, 1, "the surviving cart is exactly one submission")
	assert.Equal(t, order.Items[0].Price*float64(order.Items[0].Quantity), order.TotalAmount)
}

func TestListAllNewestFirst(t *testing.T) {
	l := newTestLedger(t)

	_, _, err := l.OpenOrReplace(1, "Ravi", "9000000001", []models.OrderItem{cola(1)})
	require.NoError(t, err)
	_, err = l.Checkout(1, "9000000001")
	require.NoError(t, err)

	_, _, err = l.OpenOrReplace(2, "Priya", "9000000002", []models.OrderItem{fries(1)})
	require.NoError(t, err)

	orders, err := l.ListAll()
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "9000000002", orders[0].CustomerMobile, "newest order comes first")
	assert.NotEmpty(t, orders[0].Items, "items are preloaded")
}

func TestFindActiveByMobileAndDesk(t *testing.T) {
	l := newTestLedger(t)

	none, err := l.FindActiveByMobile("9000000001")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, _, err = l.OpenOrReplace(6, "Ravi", "9000000001", []models.OrderItem{cola(1)})
	require.NoError(t, err)

	byMobile, err := l.FindActiveByMobile("9000000001")
	require.NoError(t, err)
	require.NotNil(t, byMobile)
	assert.Equal(t, 6, byMobile.DeskNumber)

	byDesk, err := l.FindActiveByDesk(6)
	require.NoError(t, err)
	require.NotNil(t, byDesk)
	assert.Equal(t, "9000000001", byDesk.CustomerMobile)

	free, err := l.FindActiveByDesk(2)
	require.NoError(t, err)
	assert.Nil(t, free)
}

func TestErrorKinds(t *testing.T) {
	verr := newValidationError("bad input")
	var target *ValidationError
	assert.True(t, errors.As(verr, &target))
	assert.Equal(t, "bad input", verr.Error())
}
