package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                   = errors.New("not found")
	ErrTableOccupied              = errors.New("the table already has an active order, close it")
	ErrNoImageSource              = errors.New("must have svgList, b64list or uploadImageList")
	ErrUnsupportedMediaType       = errors.New("unsupported media type")
	ErrOptimizationFailed         = errors.New("svg optimization failed")
	ErrStorageUnavailable         = errors.New("storage unavailable")
	ErrNotificationDeliveryFailed = errors.New("notification delivery failed")
	ErrInvalidInput               = errors.New("invalid input")
)

var (
	ErrOrderNotFound        = fmt.Errorf("order %w", ErrNotFound)
	ErrTableReassignment    = fmt.Errorf("%w: an order's table cannot be changed", ErrInvalidInput)
	ErrOrderReopen          = fmt.Errorf("%w: a closed order cannot be reopened", ErrInvalidInput)
	ErrPrinterNotConfigured = errors.New("print api is not configured")
)

type Kind string

const (
	KindNotFound                   Kind = "NotFound"
	KindTableOccupied              Kind = "TableOccupied"
	KindNoImageSource              Kind = "NoImageSource"
	KindUnsupportedMediaType       Kind = "UnsupportedMediaType"
	KindOptimizationFailed         Kind = "OptimizationFailed"
	KindStorageUnavailable         Kind = "StorageUnavailable"
	KindNotificationDeliveryFailed Kind = "NotificationDeliveryFailed"
	KindInvalidInput               Kind = "InvalidInput"
	KindInternal                   Kind = "Internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrNotFound, KindNotFound},
	{ErrTableOccupied, KindTableOccupied},
	{ErrNoImageSource, KindNoImageSource},
	{ErrUnsupportedMediaType, KindUnsupportedMediaType},
	{ErrOptimizationFailed, KindOptimizationFailed},
	{ErrStorageUnavailable, KindStorageUnavailable},
	{ErrNotificationDeliveryFailed, KindNotificationDeliveryFailed},
	{ErrInvalidInput, KindInvalidInput},
}

// KindOf reports the taxonomy entry of err, KindInternal when none matches.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
