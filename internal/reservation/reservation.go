// Package reservation implements the claim state machine for list items.
//
// Transitions are pure: callers load the current claim under a row lock,
// call Transition and persist the Applied claim in the same transaction.
package reservation

import (
	"time"

	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/models"
)

// Conflict reasons
const (
	ReasonReservedByOther  = "This item was just reserved by someone else. Please refresh."
	ReasonAlreadyPurchased = "This item is already marked as purchased."
)

// Claim is the mutable reservation state of an item.
type Claim struct {
	Status    models.ClaimStatus
	Claimant  *uuid.UUID
	ClaimedAt *time.Time
	Message   *string
}

// ClaimOf extracts the claim fields of item.
func ClaimOf(item *models.Item) Claim {
	return Claim{
		Status:    item.Status,
		Claimant:  item.ReservedByID,
		ClaimedAt: item.ReservedAt,
		Message:   item.ReservationMessage,
	}
}

// ApplyTo writes the claim into item.
func (c Claim) ApplyTo(item *models.Item) {
	item.Status = c.Status
	item.ReservedByID = c.Claimant
	item.ReservedAt = c.ClaimedAt
	item.ReservationMessage = c.Message
}

// Consistent reports whether the claimant fields agree with the status:
// populated iff the item is not available.
func (c Claim) Consistent() bool {
	if c.Status == models.ClaimAvailable {
		return c.Claimant == nil && c.ClaimedAt == nil && c.Message == nil
	}
	return c.Claimant != nil && c.ClaimedAt != nil
}

// Request asks to move an item to Target on behalf of Actor.
type Request struct {
	Target  models.ClaimStatus
	Actor   uuid.UUID
	Message *string
	Now     time.Time
}

// Result is either Applied or Conflict.
type Result interface {
	result()
}

// Applied carries the new claim and the audit kind to record, if any.
type Applied struct {
	Claim     Claim
	AuditKind string
}

// Conflict carries the unchanged claim and why the transition was refused.
type Conflict struct {
	Current Claim
	Reason  string
}

func (Applied) result()  {}
func (Conflict) result() {}

// Transition evaluates req against current. It returns a validation error
// only for an unknown target status.
func Transition(current Claim, req Request) (Result, error) {
	if !req.Target.Valid() {
		return nil, apperr.Validation("reservation_status must be one of available, reserved, purchased")
	}

	switch req.Target {
	case models.ClaimAvailable:
		return Applied{Claim: Claim{Status: models.ClaimAvailable}}, nil

	case models.ClaimReserved:
		switch current.Status {
		case models.ClaimPurchased:
			return Conflict{Current: current, Reason: ReasonAlreadyPurchased}, nil
		case models.ClaimReserved:
			if current.Claimant == nil || *current.Claimant != req.Actor {
				return Conflict{Current: current, Reason: ReasonReservedByOther}, nil
			}
			next := current
			next.Message = req.Message
			return Applied{Claim: next, AuditKind: models.ActivityItemReserved}, nil
		}
		return Applied{Claim: claimBy(models.ClaimReserved, req), AuditKind: models.ActivityItemReserved}, nil

	default: // purchased
		if current.Status == models.ClaimPurchased {
			return Conflict{Current: current, Reason: ReasonAlreadyPurchased}, nil
		}
		return Applied{Claim: claimBy(models.ClaimPurchased, req), AuditKind: models.ActivityItemPurchased}, nil
	}
}

func claimBy(status models.ClaimStatus, req Request) Claim {
	actor := req.Actor
	now := req.Now
	return Claim{
		Status:    status,
		Claimant:  &actor,
		ClaimedAt: &now,
		Message:   req.Message,
	}
}
