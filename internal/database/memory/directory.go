package memory

import (
	"context"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

// Directory implements the community, vehicle, signal and device token lookups
type Directory struct {
	s *Store
}

func (d *Directory) CommunityOf(ctx context.Context, userID string) (string, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return d.s.communities[userID], nil
}

// SetCommunity assigns userID to communityID; "" removes the membership
func (d *Directory) SetCommunity(userID, communityID string) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if communityID == "" {
		delete(d.s.communities, userID)
		return
	}
	d.s.communities[userID] = communityID
}

func (d *Directory) VehicleClass(ctx context.Context, vehicleID string) (string, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	class, ok := d.s.vehicles[vehicleID]
	if !ok {
		return "", domain.ErrInvalidInput
	}
	return class, nil
}

// RegisterVehicle records the class of a vehicle
func (d *Directory) RegisterVehicle(vehicleID, class string) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.vehicles[vehicleID] = class
}

func (d *Directory) DailySignal(ctx context.Context, userID, dateKey string) (*domain.DailySignal, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	sig := d.s.signals[refKey{ownerID: userID, ref: dateKey}]
	return &sig, nil
}

// SetDailySignal stores the signal for a user and day
func (d *Directory) SetDailySignal(userID, dateKey string, sig domain.DailySignal) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.signals[refKey{ownerID: userID, ref: dateKey}] = sig
}

func (d *Directory) TokensFor(ctx context.Context, userID string) ([]string, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	return append([]string(nil), d.s.tokens[userID]...), nil
}

// AddDeviceToken registers a push token for userID
func (d *Directory) AddDeviceToken(userID, token string) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for _, t := range d.s.tokens[userID] {
		if t == token {
			return
		}
	}
	d.s.tokens[userID] = append(d.s.tokens[userID], token)
}
