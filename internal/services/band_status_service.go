package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stagedoor/backend/internal/automation"
	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/internal/utils"
	"gorm.io/gorm"
)

var ErrInvalidBandAction = errors.New(`bandAction must be "Yes" or "Band Removed"`)

// StatusPoster delivers the band status webhook.
type StatusPoster interface {
	PostBandStatus(ctx context.Context, status automation.BandStatus) error
}

type BandStatusService struct {
	db     *gorm.DB
	poster StatusPoster
	cache  cache.Store
}

func NewBandStatusService(db *gorm.DB, poster StatusPoster, store cache.Store) *BandStatusService {
	return &BandStatusService{db: db, poster: poster, cache: store}
}

// BandStatusInput is one played/removed decision from the dashboard.
type BandStatusInput struct {
	BandID     string                 `json:"bandId"`
	BandName   string                 `json:"bandName"`
	BandAction string                 `json:"bandAction"`
	Payload    map[string]interface{} `json:"payload"`
}

// Update forwards the decision and records the attempt. The audit row is
// written whether or not delivery succeeded.
func (s *BandStatusService) Update(ctx context.Context, in BandStatusInput) (*models.BandStatusChange, error) {
	in.BandID = strings.TrimSpace(in.BandID)
	if in.BandID == "" {
		return nil, fmt.Errorf("%w: missing band id", ErrInvalidBandAction)
	}
	if in.BandAction != models.BandActionPlayed && in.BandAction != models.BandActionRemoved {
		return nil, ErrInvalidBandAction
	}

	payloadJSON := ""
	if in.Payload != nil {
		if jsonBytes, err := json.Marshal(in.Payload); err == nil {
			payloadJSON = string(jsonBytes)
		}
	}

	sendErr := s.poster.PostBandStatus(ctx, automation.BandStatus{
		BandID:     in.BandID,
		BandName:   in.BandName,
		BandAction: in.BandAction,
		Extra:      in.Payload,
	})

	change := &models.BandStatusChange{
		BandID:    in.BandID,
		BandName:  in.BandName,
		Action:    in.BandAction,
		Payload:   payloadJSON,
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		change.Error = sendErr.Error()
	}

	if err := s.db.WithContext(ctx).Create(change).Error; err != nil {
		utils.Log.WithError(err).WithField("band_id", in.BandID).Error("failed to record band status change")
	}

	if sendErr != nil {
		return change, fmt.Errorf("failed to update band status: %w", sendErr)
	}

	// The played flag decides the view, so cached rows are stale now.
	if s.cache != nil {
		if err := s.cache.Del(ctx, bandPayloadKey); err != nil {
			utils.Log.WithError(err).Warn("failed to invalidate band cache")
		}
	}

	utils.Log.WithFields(logrus.Fields{
		"band_id": in.BandID,
		"action":  in.BandAction,
	}).Info("Band status updated")
	return change, nil
}

// History returns the most recent status changes for a band.
func (s *BandStatusService) History(ctx context.Context, bandID string, limit int) ([]*models.BandStatusChange, error) {
	var changes []*models.BandStatusChange
	query := s.db.WithContext(ctx).Model(&models.BandStatusChange{})
	if bandID != "" {
		query = query.Where("band_id = ?", bandID)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if err := query.Order("created_at DESC").Limit(limit).Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}
