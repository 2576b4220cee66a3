package db

import (
	"context"
	"errors"
	"fmt"

	"gotube/internal/model"

	"gorm.io/gorm"
)

// VideoBlacklist returns all suppressed video IDs.
func (s *service) VideoBlacklist(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&model.VideoBlacklistEntry{}).
		Pluck("video_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load video blacklist: %w", err)
	}
	return ids, nil
}

func (s *service) VideoInBlacklist(ctx context.Context, videoID string) (bool, error) {
	err := s.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		First(&model.VideoBlacklistEntry{}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check video blacklist: %w", err)
	}
	return true, nil
}

// ChannelBlacklist returns all suppressed channel IDs.
func (s *service) ChannelBlacklist(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&model.ChannelBlacklistEntry{}).
		Pluck("channel_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load channel blacklist: %w", err)
	}
	return ids, nil
}

func (s *service) ChannelInBlacklist(ctx context.Context, channelID string) (bool, error) {
	err := s.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		First(&model.ChannelBlacklistEntry{}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check channel blacklist: %w", err)
	}
	return true, nil
}

// StopPhrases returns all configured stop phrases.
func (s *service) StopPhrases(ctx context.Context) ([]string, error) {
	var phrases []string
	err := s.db.WithContext(ctx).Model(&model.StopPhrase{}).
		Pluck("phrase", &phrases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load stop phrases: %w", err)
	}
	return phrases, nil
}
