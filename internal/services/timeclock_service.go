package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexispinzongalindo/islapos/internal/models"
	"github.com/alexispinzongalindo/islapos/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PunchClockIn    = "clock_in"
	PunchClockOut   = "clock_out"
	PunchBreakStart = "break_start"
	PunchBreakEnd   = "break_end"
)

type clockState int

const (
	clockedOut clockState = iota
	clockedIn
	onBreak
)

// allowedPunches lists the actions valid from each state.
var allowedPunches = map[clockState]map[string]bool{
	clockedOut: {PunchClockIn: true},
	clockedIn:  {PunchClockOut: true, PunchBreakStart: true},
	onBreak:    {PunchBreakEnd: true, PunchClockOut: true},
}

type PunchInput struct {
	Action string
	Note   string
	// Pin punches for the staff member holding it instead of the caller.
	Pin string
}

type TimeClockService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTimeClockService(db *gorm.DB) *TimeClockService {
	return &TimeClockService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Punch records one time-clock action for userID in restaurantID after
// checking it follows from the user's last punch.
func (s *TimeClockService) Punch(ctx context.Context, restaurantID, userID uuid.UUID, in PunchInput) (*models.TimeClockEntry, error) {
	action := strings.ToLower(strings.TrimSpace(in.Action))
	switch action {
	case PunchClockIn, PunchClockOut, PunchBreakStart, PunchBreakEnd:
	default:
		return nil, invalidf("action must be one of clock_in, clock_out, break_start, break_end")
	}
	if len(in.Note) > 500 {
		return nil, invalidf("note must be at most 500 characters")
	}

	var entry *models.TimeClockEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if pin := strings.TrimSpace(in.Pin); pin != "" {
			var member models.StaffMember
			err := tx.Scopes(tenant.ForTenant(restaurantID)).Where("pin = ?", pin).First(&member).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalidf("unknown pin")
			}
			if err != nil {
				return fmt.Errorf("failed to look up pin: %w", err)
			}
			userID = member.UserID
		}

		state, err := currentClockState(tx, restaurantID, userID)
		if err != nil {
			return err
		}
		if !allowedPunches[state][action] {
			return invalidf("cannot %s while %s", strings.ReplaceAll(action, "_", " "), state)
		}

		entry = &models.TimeClockEntry{
			RestaurantID: restaurantID,
			UserID:       userID,
			Action:       action,
			At:           s.now(),
			Note:         strings.TrimSpace(in.Note),
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record punch: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func currentClockState(tx *gorm.DB, restaurantID, userID uuid.UUID) (clockState, error) {
	var last models.TimeClockEntry
	err := tx.Scopes(tenant.ForTenant(restaurantID)).
		Where("user_id = ?", userID).
		Order("at DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return clockedOut, nil
	}
	if err != nil {
		return clockedOut, fmt.Errorf("failed to load last punch: %w", err)
	}
	switch last.Action {
	case PunchClockIn, PunchBreakEnd:
		return clockedIn, nil
	case PunchBreakStart:
		return onBreak, nil
	}
	return clockedOut, nil
}

func (c clockState) String() string {
	switch c {
	case clockedIn:
		return "clocked in"
	case onBreak:
		return "on break"
	}
	return "clocked out"
}
