package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrSubmissionInFlight is returned when a form session submits again
// before its previous submission finished.
var ErrSubmissionInFlight = errors.New("a submission for this form is already in progress")

// OfferPayload is what the store persists for an offer.
type OfferPayload struct {
	Form   OfferForm
	Status OfferStatus
	// CreatedBy is the id of the submitting user, empty for anonymous sessions.
	CreatedBy string
}

// SavedOffer identifies a persisted offer.
type SavedOffer struct {
	ID          string
	OfferNumber string
	Status      OfferStatus
}

// OfferStore persists offers.
type OfferStore interface {
	CreateOffer(ctx context.Context, p OfferPayload) (SavedOffer, error)
	UpdateOffer(ctx context.Context, id string, p OfferPayload) (SavedOffer, error)
}

// SubmissionRequest is one Save Draft or Submit action.
type SubmissionRequest struct {
	Token    string
	Mode     FormMode
	RecordID string
	Values   OfferForm
	Status   OfferStatus
	User     CurrentUser
}

// Notification is a message for the toast area.
type Notification struct {
	Type    string // "success" or "error"
	Message string
}

// SubmissionResult is the outcome of Submit. Failures are reported through
// Notification; RedirectURL is empty when the form should stay open.
type SubmissionResult struct {
	Saved        SavedOffer
	Notification Notification
	RedirectURL  string
}

// OK reports whether the offer was saved.
func (r SubmissionResult) OK() bool {
	return r.Notification.Type == "success"
}

// SubmissionOrchestrator sends validated offers to the store, at most one
// at a time per form session.
type SubmissionOrchestrator struct {
	store  OfferStore
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewSubmissionOrchestrator wires the orchestrator to store.
func NewSubmissionOrchestrator(store OfferStore, logger *slog.Logger) *SubmissionOrchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionOrchestrator{
		store:    store,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Submitting reports whether a submission for token is running.
func (o *SubmissionOrchestrator) Submitting(token string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.inFlight[token]
	return ok
}

func (o *SubmissionOrchestrator) acquire(token string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.inFlight[token]; ok {
		return false
	}
	o.inFlight[token] = struct{}{}
	return true
}

func (o *SubmissionOrchestrator) release(token string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, token)
}

// Submit creates or updates the offer depending on the request mode. Store
// errors never escape: they become an error notification and the caller
// keeps the form open with its values. The only returned error is
// ErrSubmissionInFlight.
func (o *SubmissionOrchestrator) Submit(ctx context.Context, req SubmissionRequest) (SubmissionResult, error) {
	if !o.acquire(req.Token) {
		return SubmissionResult{}, ErrSubmissionInFlight
	}
	defer o.release(req.Token)

	payload := OfferPayload{Form: req.Values, Status: req.Status, CreatedBy: req.User.ID}

	var (
		saved    SavedOffer
		err      error
		fallback string
	)
	switch req.Mode {
	case ModeEdit:
		fallback = "Failed to update offer"
		if req.RecordID == "" {
			err = errors.New("missing offer id for update")
			break
		}
		saved, err = o.store.UpdateOffer(ctx, req.RecordID, payload)
	default:
		fallback = "Failed to create offer"
		saved, err = o.store.CreateOffer(ctx, payload)
	}

	if err != nil {
		o.logger.Error("offer submission failed",
			"mode", string(req.Mode),
			"record_id", req.RecordID,
			"status", string(req.Status),
			"error", err,
		)
		return SubmissionResult{
			Notification: Notification{Type: "error", Message: UserMessage(err, fallback)},
		}, nil
	}

	o.logger.Info("offer saved",
		"offer_id", saved.ID,
		"offer_number", saved.OfferNumber,
		"status", string(saved.Status),
	)

	return SubmissionResult{
		Saved:        saved,
		Notification: Notification{Type: "success", Message: successMessage(req.Mode, req.Status)},
		RedirectURL:  fmt.Sprintf("/offers/%s", saved.ID),
	}, nil
}

func successMessage(mode FormMode, status OfferStatus) string {
	switch {
	case status == StatusDraft:
		return "Draft saved"
	case mode == ModeEdit:
		return "Offer updated and sent for approval"
	}
	return "Offer submitted for approval"
}
