// internal/app/membership/controller.go
package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/sportsbuddy/sportsbuddy/internal/app/store/audit"
	membershipstore "github.com/sportsbuddy/sportsbuddy/internal/app/store/memberships"
	"github.com/sportsbuddy/sportsbuddy/internal/app/store/storeerr"
	"github.com/sportsbuddy/sportsbuddy/internal/app/system/notify"
	"github.com/sportsbuddy/sportsbuddy/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MembershipStore is the slice of the memberships store the controller uses.
type MembershipStore interface {
	Get(ctx context.Context, eventID, userID primitive.ObjectID) (*models.EventMembership, error)
	Upsert(ctx context.Context, eventID, userID primitive.ObjectID, status string, snap membershipstore.Snapshot) error
	SetAccepted(ctx context.Context, eventID, userID primitive.ObjectID) error
	Delete(ctx context.Context, eventID, userID primitive.ObjectID) error
	List(ctx context.Context, eventID primitive.ObjectID, status string) ([]models.EventMembership, error)
}

// EventStore is the slice of the events store the controller uses: the event
// read plus the denormalized attendee/accepted set updates.
type EventStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	AddToAttendees(ctx context.Context, eventID, userID primitive.ObjectID) error
	RemoveFromAttendees(ctx context.Context, eventID, userID primitive.ObjectID) error
	AddToAccepted(ctx context.Context, eventID, userID primitive.ObjectID) error
	RemoveFromAccepted(ctx context.Context, eventID, userID primitive.ObjectID) error
	ReplaceSets(ctx context.Context, eventID primitive.ObjectID, attendees, accepted []primitive.ObjectID) error
}

// Notifier delivers user notifications. Implementations are fire-and-forget.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message)
}

// Auditor records audit entries. Implementations are fire-and-forget.
type Auditor interface {
	Record(ctx context.Context, actorID *primitive.ObjectID, action, targetCollection, targetID string, details map[string]string)
}

// Profile is the acting user as the identity layer hands it to us.
type Profile struct {
	ID    primitive.ObjectID
	Name  string
	Email string
	Role  string // "user" | "admin"
}

// DisplayName mirrors the snapshot fallback chain used on join.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return "A SportsBuddy user"
}

func (p Profile) isAdmin() bool { return p.Role == "admin" }

// Controller enforces the membership state machine for one (event, user)
// pair and coordinates the store, notification, and audit writes for each
// user action:
//
//	[no record] --Join--> [pending] --Accept--> [accepted]
//	[pending]   --Reject----------------------> [no record]
//	[accepted]  --Reject----------------------> [no record]
//	[pending]|[accepted] --Leave (by member)--> [no record]
//
// Store writes are sequenced; the membership record write and the
// denormalized set update are not one transaction, so a crash in between
// leaves the cache stale until Reconcile repairs it. Side-channel writes
// (notify, audit) never fail the primary mutation.
type Controller struct {
	memberships MembershipStore
	events      EventStore
	notifier    Notifier
	auditor     Auditor
	log         *zap.Logger
}

// New creates a Controller. Collaborators are injected; nothing global.
func New(memberships MembershipStore, events EventStore, notifier Notifier, auditor Auditor, logger *zap.Logger) *Controller {
	return &Controller{
		memberships: memberships,
		events:      events,
		notifier:    notifier,
		auditor:     auditor,
		log:         logger,
	}
}

// Join files a pending request for candidate on the event.
//
// A second join while any record exists is refused with ErrAlreadyRequested:
// the original client would silently reset an accepted record back to
// pending, which loses the creator's decision. The event creator cannot
// join their own event.
func (c *Controller) Join(ctx context.Context, eventID primitive.ObjectID, candidate Profile, eventTitle string) error {
	if candidate.ID.IsZero() || (candidate.Name == "" && candidate.Email == "") {
		return fmt.Errorf("join: anonymous profile: %w", storeerr.ErrPermissionDenied)
	}

	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.CreatedBy == candidate.ID {
		return fmt.Errorf("join: creator cannot join own event: %w", storeerr.ErrPermissionDenied)
	}

	if _, err := c.memberships.Get(ctx, eventID, candidate.ID); err == nil {
		return storeerr.ErrAlreadyRequested
	} else if !errors.Is(err, storeerr.ErrNotFound) {
		return err
	}

	snap := membershipstore.Snapshot{
		DisplayName: candidate.DisplayName(),
		Email:       candidate.Email,
	}
	if err := c.memberships.Upsert(ctx, eventID, candidate.ID, models.MembershipPending, snap); err != nil {
		return err
	}
	if err := c.events.AddToAttendees(ctx, eventID, candidate.ID); err != nil {
		return err
	}

	c.notifier.Send(ctx, notify.Message{
		UserID:  ev.CreatedBy,
		Type:    models.NotifyJoinRequest,
		Title:   "New Join Request",
		Message: fmt.Sprintf("%s has requested to join your event: %q.", candidate.DisplayName(), titleOr(eventTitle, ev.Title)),
		Data: map[string]string{
			"eventId":      eventID.Hex(),
			"eventTitle":   titleOr(eventTitle, ev.Title),
			"attendeeId":   candidate.ID.Hex(),
			"attendeeName": candidate.DisplayName(),
			"creatorId":    ev.CreatedBy.Hex(),
		},
	})

	c.auditor.Record(ctx, &candidate.ID, audit.ActionJoinEvent, "events", eventID.Hex(), map[string]string{
		"displayName": candidate.DisplayName(),
		"eventTitle":  titleOr(eventTitle, ev.Title),
		"status":      models.MembershipPending,
	})
	return nil
}

// Accept approves a pending request. Only the event creator or an admin may
// accept; the check lives here, not in the callers. Accepting on an event
// deleted by a concurrent writer fails with ErrNotFound before any
// accepted-set write happens.
func (c *Controller) Accept(ctx context.Context, eventID, attendeeID primitive.ObjectID, actor Profile, eventTitle string) error {
	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := c.authorize(ev, actor); err != nil {
		return err
	}

	if _, err := c.memberships.Get(ctx, eventID, attendeeID); err != nil {
		return err
	}
	if err := c.memberships.SetAccepted(ctx, eventID, attendeeID); err != nil {
		return err
	}
	if err := c.events.AddToAccepted(ctx, eventID, attendeeID); err != nil {
		return err
	}

	c.notifier.Send(ctx, notify.Message{
		UserID:  attendeeID,
		Type:    models.NotifyRequestAccepted,
		Title:   "Request Accepted",
		Message: fmt.Sprintf("Your request for %q has been accepted by %s", titleOr(eventTitle, ev.Title), actor.DisplayName()),
		Data: map[string]string{
			"eventId":     eventID.Hex(),
			"eventTitle":  titleOr(eventTitle, ev.Title),
			"creatorName": actor.DisplayName(),
			"creatorId":   actor.ID.Hex(),
		},
	})

	c.auditor.Record(ctx, &actor.ID, audit.ActionAcceptRequest, "events", eventID.Hex(), map[string]string{
		"attendeeId": attendeeID.Hex(),
		"eventTitle": titleOr(eventTitle, ev.Title),
	})
	return nil
}

// Reject removes a request in either state. On a pending record it is a
// plain rejection; on an accepted record it doubles as "remove an attendee"
// and additionally clears the accepted set. Authorization is the same as
// Accept.
func (c *Controller) Reject(ctx context.Context, eventID, attendeeID primitive.ObjectID, actor Profile, eventTitle string) error {
	ev, err := c.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := c.authorize(ev, actor); err != nil {
		return err
	}

	wasAccepted, err := c.removeRecord(ctx, eventID, attendeeID)
	if err != nil {
		return err
	}

	c.notifier.Send(ctx, notify.Message{
		UserID:  attendeeID,
		Type:    models.NotifyRequestRejected,
		Title:   "Request Rejected",
		Message: fmt.Sprintf("Your request for %q has been rejected by %s", titleOr(eventTitle, ev.Title), actor.DisplayName()),
		Data: map[string]string{
			"eventId":     eventID.Hex(),
			"eventTitle":  titleOr(eventTitle, ev.Title),
			"creatorName": actor.DisplayName(),
			"creatorId":   actor.ID.Hex(),
		},
	})

	action := audit.ActionRejectRequest
	if wasAccepted {
		action = audit.ActionRejectAfterAccept
	}
	c.auditor.Record(ctx, &actor.ID, action, "events", eventID.Hex(), map[string]string{
		"attendeeId": attendeeID.Hex(),
		"eventTitle": titleOr(eventTitle, ev.Title),
	})
	return nil
}

// Leave removes the member's own record, pending or accepted. Leaving with
// no existing record reports ErrNotFound.
func (c *Controller) Leave(ctx context.Context, eventID primitive.ObjectID, member Profile, eventTitle string) error {
	wasAccepted, err := c.removeRecord(ctx, eventID, member.ID)
	if err != nil {
		return err
	}

	c.auditor.Record(ctx, &member.ID, audit.ActionLeaveEvent, "events", eventID.Hex(), map[string]string{
		"displayName": member.DisplayName(),
		"eventTitle":  eventTitle,
		"wasAccepted": fmt.Sprintf("%t", wasAccepted),
	})
	return nil
}

// ListRequests is a read-through used for pending counts and the triage
// queues. Pass an empty status for all records.
func (c *Controller) ListRequests(ctx context.Context, eventID primitive.ObjectID, status string) ([]models.EventMembership, error) {
	return c.memberships.List(ctx, eventID, status)
}

// Reconcile re-derives the event's denormalized attendee/accepted sets from
// the authoritative membership records and rewrites both. It is the repair
// for divergence left behind by a crash between a record write and its set
// update.
func (c *Controller) Reconcile(ctx context.Context, eventID primitive.ObjectID) error {
	if _, err := c.events.GetByID(ctx, eventID); err != nil {
		return err
	}
	records, err := c.memberships.List(ctx, eventID, "")
	if err != nil {
		return err
	}

	attendees := make([]primitive.ObjectID, 0, len(records))
	accepted := make([]primitive.ObjectID, 0, len(records))
	for _, rec := range records {
		attendees = append(attendees, rec.UserID)
		if rec.Status == models.MembershipAccepted {
			accepted = append(accepted, rec.UserID)
		}
	}

	if err := c.events.ReplaceSets(ctx, eventID, attendees, accepted); err != nil {
		return err
	}
	c.log.Info("reconciled event membership sets",
		zap.String("event_id", eventID.Hex()),
		zap.Int("attendees", len(attendees)),
		zap.Int("accepted", len(accepted)))
	return nil
}

// removeRecord deletes the membership record and clears the denormalized
// sets, returning whether the record was accepted before removal.
func (c *Controller) removeRecord(ctx context.Context, eventID, userID primitive.ObjectID) (bool, error) {
	rec, err := c.memberships.Get(ctx, eventID, userID)
	if err != nil {
		return false, err
	}
	wasAccepted := rec.Status == models.MembershipAccepted

	if err := c.memberships.Delete(ctx, eventID, userID); err != nil {
		return false, err
	}
	if err := c.events.RemoveFromAttendees(ctx, eventID, userID); err != nil {
		return false, err
	}
	if wasAccepted {
		if err := c.events.RemoveFromAccepted(ctx, eventID, userID); err != nil {
			return false, err
		}
	}
	return wasAccepted, nil
}

func (c *Controller) authorize(ev *models.Event, actor Profile) error {
	if actor.ID == ev.CreatedBy || actor.isAdmin() {
		return nil
	}
	return fmt.Errorf("event %s: %w", ev.ID.Hex(), storeerr.ErrPermissionDenied)
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	if fallback != "" {
		return fallback
	}
	return "Sports Event"
}
