package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexispinzongalindo/islapos/internal/metrics"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidPairingCode        = errors.New("invalid or expired pairing code")
	ErrInvalidGatewayCredentials = errors.New("invalid gateway credentials")
)

const (
	pairingCodeTTL      = time.Hour
	pairingInsertTries  = 5
	maxEventsPerBatch   = 500
	maxExternalIDLength = 128
	maxEventTypeLength  = 100
)

type EdgeService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEdgeService(db *gorm.DB) *EdgeService {
	return &EdgeService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// StartPairing issues a one-hour, single-use pairing code for restaurantID.
func (s *EdgeService) StartPairing(ctx context.Context, restaurantID, createdBy uuid.UUID) (*models.EdgePairingCode, error) {
	for attempt := 1; attempt <= pairingInsertTries; attempt++ {
		code, err := randomPairingCode()
		if err != nil {
			return nil, err
		}
		pc := &models.EdgePairingCode{
			Code:         code,
			RestaurantID: restaurantID,
			CreatedBy:    createdBy,
			ExpiresAt:    s.now().Add(pairingCodeTTL),
		}
		result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(pc)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to store pairing code: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			metrics.PairingCodes.WithLabelValues("issued").Inc()
			return pc, nil
		}
		slog.Warn("pairing code collision", "attempt", attempt)
	}
	return nil, fmt.Errorf("failed to allocate a unique pairing code after %d attempts", pairingInsertTries)
}

type PairingResult struct {
	GatewayID    uuid.UUID
	RestaurantID uuid.UUID
	// Secret is only ever returned here; storage keeps the bcrypt hash.
	Secret string
}

// CompletePairing redeems a code for a new gateway credential. Expired codes
// are deleted when seen.
func (s *EdgeService) CompletePairing(ctx context.Context, code, name string) (*PairingResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, invalidf("code is required")
	}
	name = strings.TrimSpace(name)
	if len(name) > 100 {
		return nil, invalidf("name must be at most 100 characters")
	}
	if name == "" {
		name = "Edge gateway"
	}

	var pc models.EdgePairingCode
	err := s.db.WithContext(ctx).First(&pc, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidPairingCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pairing code: %w", err)
	}

	now := s.now()
	if !now.Before(pc.ExpiresAt) {
		if err := s.db.WithContext(ctx).Where("code = ?", code).Delete(&models.EdgePairingCode{}).Error; err != nil {
			slog.Error("failed to delete expired pairing code", "restaurant_id", pc.RestaurantID.String(), "error", err)
		}
		metrics.PairingCodes.WithLabelValues("expired").Inc()
		return nil, ErrInvalidPairingCode
	}

	secret, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash gateway secret: %w", err)
	}

	gateway := &models.EdgeGateway{
		RestaurantID: pc.RestaurantID,
		Name:         name,
		SecretHash:   string(hash),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		consumed := tx.Where("code = ? AND expires_at > ?", code, now).Delete(&models.EdgePairingCode{})
		if consumed.Error != nil {
			return fmt.Errorf("failed to consume pairing code: %w", consumed.Error)
		}
		if consumed.RowsAffected != 1 {
			return ErrInvalidPairingCode
		}
		if err := tx.Create(gateway).Error; err != nil {
			return fmt.Errorf("failed to create gateway: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PairingCodes.WithLabelValues("redeemed").Inc()
	slog.Info("edge gateway paired", "restaurant_id", gateway.RestaurantID.String(), "gateway_id", gateway.ID.String())
	return &PairingResult{GatewayID: gateway.ID, RestaurantID: gateway.RestaurantID, Secret: secret}, nil
}

// AuthenticateGateway checks a device id and shared secret against the stored hash.
func (s *EdgeService) AuthenticateGateway(ctx context.Context, rawID, secret string) (*models.EdgeGateway, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil || secret == "" {
		return nil, ErrInvalidGatewayCredentials
	}
	var gateway models.EdgeGateway
	err = s.db.WithContext(ctx).First(&gateway, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidGatewayCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(gateway.SecretHash), []byte(secret)) != nil {
		return nil, ErrInvalidGatewayCredentials
	}
	return &gateway, nil
}

type EdgeEventInput struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt *time.Time      `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

type IngestResult struct {
	Accepted  int `json:"accepted"`
	Duplicate int `json:"duplicate"`
}

// IngestEvents stores each event at most once per (restaurant, event id).
// Repeats, within the batch or across batches, count as duplicates.
func (s *EdgeService) IngestEvents(ctx context.Context, gateway *models.EdgeGateway, events []EdgeEventInput) (*IngestResult, error) {
	if len(events) == 0 {
		return nil, invalidf("events must not be empty")
	}
	if len(events) > maxEventsPerBatch {
		return nil, invalidf("at most %d events per batch", maxEventsPerBatch)
	}
	for i, ev := range events {
		id := strings.TrimSpace(ev.ID)
		if id == "" || len(id) > maxExternalIDLength {
			return nil, invalidf("events[%d].id is required and must be at most %d characters", i, maxExternalIDLength)
		}
		typ := strings.TrimSpace(ev.Type)
		if typ == "" || len(typ) > maxEventTypeLength {
			return nil, invalidf("events[%d].type is required and must be at most %d characters", i, maxEventTypeLength)
		}
		if len(ev.Payload) > 0 && !json.Valid(ev.Payload) {
			return nil, invalidf("events[%d].payload is not valid JSON", i)
		}
	}

	result := &IngestResult{}
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ev := range events {
			row := models.EdgeEvent{
				RestaurantID: gateway.RestaurantID,
				ExternalID:   strings.TrimSpace(ev.ID),
				GatewayID:    gateway.ID,
				Type:         strings.TrimSpace(ev.Type),
				Payload:      datatypes.JSON(ev.Payload),
				OccurredAt:   ev.OccurredAt,
				ReceivedAt:   now,
			}
			inserted := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "external_id"}},
				DoNothing: true,
			}).Create(&row)
			if inserted.Error != nil {
				return fmt.Errorf("failed to store event: %w", inserted.Error)
			}
			if inserted.RowsAffected == 1 {
				result.Accepted++
			} else {
				result.Duplicate++
			}
		}
		return tx.Model(&models.EdgeGateway{}).Where("id = ?", gateway.ID).Update("last_seen_at", now).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.EdgeEvents.WithLabelValues("accepted").Add(float64(result.Accepted))
	metrics.EdgeEvents.WithLabelValues("duplicate").Add(float64(result.Duplicate))
	return result, nil
}
