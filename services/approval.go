package services

import (
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// DecideOffer records an approver's decision on a pending offer. Only
// PENDING_APPROVAL offers can move, and only to APPROVED or REJECTED.
// A rejection needs a note so the author knows what to change.
func DecideOffer(app core.App, offerID string, user CurrentUser, decision OfferStatus, note string) error {
	if !user.CanSelfApprove() {
		return &CollaboratorError{Message: "Only approvers can approve or reject offers"}
	}

	rec, err := app.FindRecordById("offers", offerID)
	if err != nil {
		return &CollaboratorError{Message: "Offer not found", Err: err}
	}

	current := OfferStatus(rec.GetString("status"))
	if !current.CanTransitionTo(decision) {
		return &CollaboratorError{
			Message: fmt.Sprintf("A %s offer cannot be marked %s", current.Label(), decision.Label()),
			Err:     fmt.Errorf("offer %s: transition %s -> %s not allowed", offerID, current, decision),
		}
	}

	note = strings.TrimSpace(note)
	if decision == StatusRejected && note == "" {
		return &CollaboratorError{Message: "Please give a reason for rejecting the offer"}
	}

	rec.Set("status", string(decision))
	rec.Set("decided_by", user.ID)
	rec.Set("decision_note", note)
	if err := app.Save(rec); err != nil {
		return saveError("decision", err)
	}
	return nil
}

// DeleteOffer removes an offer that has not been sent for approval, or was
// rejected. Work items go with it through the cascading relation.
func DeleteOffer(app core.App, offerID string) error {
	rec, err := app.FindRecordById("offers", offerID)
	if err != nil {
		return &CollaboratorError{Message: "Offer not found", Err: err}
	}

	if status := OfferStatus(rec.GetString("status")); !status.Editable() {
		return &CollaboratorError{
			Message: fmt.Sprintf("Offers that are %s cannot be deleted", status.Label()),
			Err:     fmt.Errorf("offer %s has status %s", offerID, status),
		}
	}

	if err := app.Delete(rec); err != nil {
		return fmt.Errorf("delete offer %s: %w", offerID, err)
	}
	return nil
}
