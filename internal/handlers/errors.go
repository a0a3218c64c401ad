package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/gamezone/internal/ledger"
)

// mapLedgerError translates ledger error kinds into HTTP errors.
// Anything unrecognized surfaces as a 500 through fiber's error handler.
func mapLedgerError(err error) error {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.NewError(fiber.StatusBadRequest, verr.Message)
	case errors.Is(err, ledger.ErrNoActiveOrder):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrDeskOccupied), errors.Is(err, ledger.ErrCustomerBusy):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
