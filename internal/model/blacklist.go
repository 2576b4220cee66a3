package model

import "gorm.io/gorm"

// VideoBlacklistEntry marks a single video as suppressed.
type VideoBlacklistEntry struct {
	gorm.Model
	VideoID string `gorm:"type:varchar(255);uniqueIndex;not null" json:"videoId"`
	Reason  string `gorm:"type:varchar(255);default:''" json:"reason"`
}

// ChannelBlacklistEntry marks every video of a channel as suppressed.
type ChannelBlacklistEntry struct {
	gorm.Model
	ChannelID string `gorm:"type:varchar(255);uniqueIndex;not null" json:"channelId"`
	Reason    string `gorm:"type:varchar(255);default:''" json:"reason"`
}

// StopPhrase suppresses any result whose title or channel title contains the
// phrase, matched case-insensitively.
type StopPhrase struct {
	gorm.Model
	Phrase string `gorm:"type:varchar(255);uniqueIndex;not null" json:"phrase"`
}
