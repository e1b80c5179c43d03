package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is one walk through the checkout steps. Card data is never stored
// on it; payment input only lives for the duration of Complete.
type Session struct {
	ID               string    `json:"id"`
	Step             Step      `json:"step"`
	Details          Details   `json:"details"`
	ShippingMethodID string    `json:"shipping_method_id,omitempty"`
	OrderID          string    `json:"order_id,omitempty"`
	OrderNumber      string    `json:"order_number,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CartReader interface {
	Lines(ctx context.Context) (cart.Lines, error)
}

type Checkout struct {
	backend  storage.Backend
	cart     CartReader
	recorder *Recorder
	log      *zap.Logger
	now      func() time.Time
}

func NewCheckout(backend storage.Backend, c CartReader, rec *Recorder, log *zap.Logger) *Checkout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checkout{backend: backend, cart: c, recorder: rec, log: log, now: time.Now}
}

func sessionKey(id string) string { return fmt.Sprintf(storage.KeyCheckout, id) }

// Start opens a session at the details step. An empty cart cannot be checked out.
func (c *Checkout) Start(ctx context.Context) (Session, error) {
	lines, err := c.cart.Lines(ctx)
	if err != nil {
		return Session{}, err
	}
	if len(lines) == 0 {
		return Session{}, ErrEmptyCart
	}
	now := c.now().UTC()
	s := Session{ID: uuid.NewString(), Step: StepDetails, CreatedAt: now, UpdatedAt: now}
	if err := storage.SetJSON(ctx, c.backend, sessionKey(s.ID), s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (c *Checkout) Get(ctx context.Context, id string) (Session, error) {
	var s Session
	found, err := storage.GetJSON(ctx, c.backend, sessionKey(id), &s)
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// update runs fn on the stored session under its lock and persists the result
// only when fn succeeds.
func (c *Checkout) update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	var out Session
	err := storage.WithLock(ctx, c.backend, sessionKey(id), func() error {
		s, err := c.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(&s); err != nil {
			return err
		}
		s.UpdatedAt = c.now().UTC()
		out = s
		return storage.SetJSON(ctx, c.backend, sessionKey(id), s)
	})
	return out, err
}

func advance(s *Session, to Step) error {
	if !CanAdvance(s.Step, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Step, to)
	}
	s.Step = to
	return nil
}

func (c *Checkout) SubmitDetails(ctx context.Context, id string, d Details) (Session, error) {
	return c.update(ctx, id, func(s *Session) error {
		if s.Step != StepDetails {
			return fmt.Errorf("%w: details submitted at %s", ErrInvalidTransition, s.Step)
		}
		if err := d.Validate(); err != nil {
			return err
		}
		s.Details = d
		return advance(s, StepShipping)
	})
}

func (c *Checkout) SelectShipping(ctx context.Context, id, methodID string) (Session, error) {
	return c.update(ctx, id, func(s *Session) error {
		if s.Step != StepShipping {
			return fmt.Errorf("%w: shipping selected at %s", ErrInvalidTransition, s.Step)
		}
		if _, ok := FindShippingMethod(methodID); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownShippingMethod, methodID)
		}
		s.ShippingMethodID = methodID
		return advance(s, StepPayment)
	})
}

// Back returns to an earlier step. Entered data is kept.
func (c *Checkout) Back(ctx context.Context, id string, to Step) (Session, error) {
	return c.update(ctx, id, func(s *Session) error {
		if !CanGoBack(s.Step, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Step, to)
		}
		s.Step = to
		return nil
	})
}

// Complete validates the payment input and commits the cart as an order.
// A failed commit leaves the session at the payment step. If the order commits
// but the session cannot be saved, the order is returned with the error.
func (c *Checkout) Complete(ctx context.Context, id string, p Payment) (Session, Order, error) {
	var order Order
	s, err := c.update(ctx, id, func(s *Session) error {
		if s.Step != StepPayment {
			return fmt.Errorf("%w: payment submitted at %s", ErrInvalidTransition, s.Step)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		lines, err := c.cart.Lines(ctx)
		if err != nil {
			return err
		}
		order, err = c.recorder.Commit(ctx, lines, CheckoutInput{
			Details:          s.Details,
			ShippingMethodID: s.ShippingMethodID,
			Payment:          p,
		})
		if err != nil {
			return err
		}
		s.OrderID = order.ID
		s.OrderNumber = order.Number
		return advance(s, StepSuccess)
	})
	if err != nil && order.ID != "" {
		// the order and stock are committed; only the session write was lost
		c.log.Error("checkout session not saved after order commit",
			zap.String("session_id", id),
			zap.String("order_id", order.ID),
			zap.String("order_number", order.Number),
			zap.Error(err),
		)
		return Session{}, order, err
	}
	if err != nil {
		return Session{}, Order{}, err
	}
	return s, order, nil
}

// Restart drops the old session, if any, and opens a new one at details.
func (c *Checkout) Restart(ctx context.Context, id string) (Session, error) {
	if id != "" {
		err := storage.WithLock(ctx, c.backend, sessionKey(id), func() error {
			return c.backend.Delete(ctx, sessionKey(id))
		})
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return Session{}, err
		}
	}
	return c.Start(ctx)
}
