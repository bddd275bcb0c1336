package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/EcoRewards_Go/internal/domain"
)

const (
	queryCommunityOf  = `SELECT community_id FROM community_members WHERE user_id = $1`
	queryDeleteMember = `DELETE FROM community_members WHERE user_id = $1`
	queryUpsertMember = `INSERT INTO community_members (user_id, community_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET community_id = EXCLUDED.community_id, joined_at = NOW()`
	queryVehicleClass  = `SELECT vehicle_class FROM vehicles WHERE vehicle_id = $1`
	queryUpsertVehicle = `INSERT INTO vehicles (vehicle_id, vehicle_class) VALUES ($1, $2)
		ON CONFLICT (vehicle_id) DO UPDATE SET vehicle_class = EXCLUDED.vehicle_class`
	queryDailySignal = `SELECT car_distance_km, non_veg_meal, appliance_hours, dominant_category
		FROM daily_signals WHERE user_id = $1 AND date_key = $2`
	queryUpsertSignal = `INSERT INTO daily_signals (user_id, date_key, car_distance_km, non_veg_meal, appliance_hours, dominant_category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, date_key) DO UPDATE SET
			car_distance_km = EXCLUDED.car_distance_km,
			non_veg_meal = EXCLUDED.non_veg_meal,
			appliance_hours = EXCLUDED.appliance_hours,
			dominant_category = EXCLUDED.dominant_category`
	queryTokensFor      = `SELECT token FROM device_tokens WHERE user_id = $1 ORDER BY created_at, token`
	queryAddDeviceToken = `INSERT INTO device_tokens (user_id, token) VALUES ($1, $2)
		ON CONFLICT (user_id, token) DO NOTHING`
)

// Directory implements the community, vehicle, signal and device token lookups on Postgres
type Directory struct {
	db *pgxpool.Pool
}

// NewDirectory creates a new Directory
func NewDirectory(db *pgxpool.Pool) *Directory {
	return &Directory{db: db}
}

func (d *Directory) CommunityOf(ctx context.Context, userID string) (string, error) {
	var communityID string
	err := d.db.QueryRow(ctx, queryCommunityOf, userID).Scan(&communityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrMsgFailedToGetCommunity, err)
	}
	return communityID, nil
}

// SetCommunity assigns userID to communityID; "" removes the membership
func (d *Directory) SetCommunity(ctx context.Context, userID, communityID string) error {
	var err error
	if communityID == "" {
		_, err = d.db.Exec(ctx, queryDeleteMember, userID)
	} else {
		_, err = d.db.Exec(ctx, queryUpsertMember, userID, communityID)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSetCommunity, err)
	}
	return nil
}

// VehicleClass returns domain.ErrInvalidInput for an unregistered vehicle
func (d *Directory) VehicleClass(ctx context.Context, vehicleID string) (string, error) {
	var class string
	err := d.db.QueryRow(ctx, queryVehicleClass, vehicleID).Scan(&class)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: unknown vehicle %s", domain.ErrInvalidInput, vehicleID)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrMsgFailedToGetVehicle, err)
	}
	return class, nil
}

// RegisterVehicle records the class of a vehicle
func (d *Directory) RegisterVehicle(ctx context.Context, vehicleID, class string) error {
	if _, err := d.db.Exec(ctx, queryUpsertVehicle, vehicleID, class); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSetVehicle, err)
	}
	return nil
}

func (d *Directory) DailySignal(ctx context.Context, userID, dateKey string) (*domain.DailySignal, error) {
	var sig domain.DailySignal
	var category string
	err := d.db.QueryRow(ctx, queryDailySignal, userID, dateKey).
		Scan(&sig.CarDistanceKm, &sig.NonVegMeal, &sig.ApplianceHours, &category)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.DailySignal{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetSignal, err)
	}
	sig.DominantCategory = domain.Category(category)
	return &sig, nil
}

// SetDailySignal stores the signal for a user and day
func (d *Directory) SetDailySignal(ctx context.Context, userID, dateKey string, sig domain.DailySignal) error {
	_, err := d.db.Exec(ctx, queryUpsertSignal, userID, dateKey,
		sig.CarDistanceKm, sig.NonVegMeal, sig.ApplianceHours, string(sig.DominantCategory))
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToSetSignal, err)
	}
	return nil
}

func (d *Directory) TokensFor(ctx context.Context, userID string) ([]string, error) {
	tokens, err := collectStrings(ctx, d.db, queryTokensFor, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToGetTokens, err)
	}
	return tokens, nil
}

// AddDeviceToken registers a push token for userID
func (d *Directory) AddDeviceToken(ctx context.Context, userID, token string) error {
	if _, err := d.db.Exec(ctx, queryAddDeviceToken, userID, token); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToAddDeviceToken, err)
	}
	return nil
}
