package services

import (
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// KitchenBroadcaster pushes ticket messages to kitchen displays or printers.
// Implementations must not block on the network.
type KitchenBroadcaster interface {
	Broadcast(msg models.KitchenMessage) error
}

// NopBroadcaster accepts everything. It is the default when no kitchen
// transport is configured.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(models.KitchenMessage) error { return nil }

// BroadcasterFunc adapts a function to KitchenBroadcaster.
type BroadcasterFunc func(msg models.KitchenMessage) error

func (f BroadcasterFunc) Broadcast(msg models.KitchenMessage) error { return f(msg) }

// MultiBroadcaster sends to every target. The first target is the primary
// display and only its error is returned; later targets are best effort and
// their failures are logged, so a ticket a display already shows is never
// withdrawn because a mirror fell behind.
type MultiBroadcaster []KitchenBroadcaster

func (m MultiBroadcaster) Broadcast(msg models.KitchenMessage) error {
	if len(m) == 0 {
		return nil
	}
	err := m[0].Broadcast(msg)
	for _, b := range m[1:] {
		if serr := b.Broadcast(msg); serr != nil {
			utils.ErrorLogger.WithField("message_id", msg.ID).Warnf("Secondary kitchen broadcast failed: %v", serr)
		}
	}
	return err
}
