package repository

import (
	"context"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// CommunityDirectory resolves community membership
type CommunityDirectory interface {
	// CommunityOf returns "" when the user has no community
	CommunityOf(ctx context.Context, userID string) (string, error)
}

// VehicleLookup resolves the class of a registered vehicle
type VehicleLookup interface {
	VehicleClass(ctx context.Context, vehicleID string) (string, error)
}

// SignalProvider returns the same-day behavioural signal for a user
type SignalProvider interface {
	// DailySignal returns a zero signal when nothing was logged
	DailySignal(ctx context.Context, userID, dateKey string) (*domain.DailySignal, error)
}

// DeviceTokenStore resolves push tokens for a user
type DeviceTokenStore interface {
	TokensFor(ctx context.Context, userID string) ([]string, error)
}
