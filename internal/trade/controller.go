// Package trade enforces the trade-status rules on sell listings: only the
// listing owner may advance the status, transitions only move forward, and
// the displayed status always comes from the authoritative record.
package trade

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sejin-coding/currex-go/internal/domain"
	apperrors "github.com/sejin-coding/currex-go/pkg/errors"
)

// ListingService is the slice of the API client the controller needs.
type ListingService interface {
	SellDescription(ctx context.Context, sellID string) (domain.Listing, error)
	UpdateSellStatus(ctx context.Context, sellID string, status domain.ListingStatus) error
}

// Controller guards status transitions on a sell listing.
type Controller struct {
	svc    ListingService
	logger *slog.Logger
}

// NewController creates a trade status controller.
func NewController(svc ListingService, logger *slog.Logger) *Controller {
	return &Controller{svc: svc, logger: logger}
}

// ChangeStatus advances a listing's trade status on behalf of userID.
//
// Rejections happen locally, before any network call: a non-owner gets
// ErrPermissionDenied, and a non-forward transition (including any move off
// a completed listing) gets ErrConflict. On success the authoritative record
// is re-fetched and its status returned; the optimistic write is never
// trusted. On failure the caller's displayed status is left unchanged.
func (c *Controller) ChangeStatus(ctx context.Context, listing domain.Listing, next domain.ListingStatus, userID string) (domain.ListingStatus, error) {
	if !next.Valid() {
		return "", apperrors.Validation(fmt.Sprintf("unknown status %q", next), nil)
	}

	if !listing.OwnedBy(userID) {
		c.logger.WarnContext(ctx, "status change rejected: not the listing owner",
			slog.String("sell_id", listing.SellID),
			slog.String("user_id", userID),
		)
		return "", apperrors.PermissionDenied("only the seller can change the trade status")
	}

	if !listing.Status.CanAdvanceTo(next) {
		return "", apperrors.Conflict(fmt.Sprintf(
			"cannot move listing from %s to %s", listing.Status.English(), next.English(),
		))
	}

	if err := c.svc.UpdateSellStatus(ctx, listing.SellID, next); err != nil {
		return "", err
	}

	updated, err := c.svc.SellDescription(ctx, listing.SellID)
	if err != nil {
		return "", apperrors.Wrap(err, "status updated but re-fetch failed")
	}

	c.logger.InfoContext(ctx, "trade status changed",
		slog.String("sell_id", listing.SellID),
		slog.String("from", listing.Status.English()),
		slog.String("to", updated.Status.English()),
	)
	return updated.Status, nil
}
