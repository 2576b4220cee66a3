package model

import "gorm.io/gorm"

// Credential represents a YouTube Data API key stored in the database.
// CurrentUsage is the quota consumed today; it only grows until the daily
// reset job zeroes it.
type Credential struct {
	gorm.Model
	Key          string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"key"`
	CurrentUsage int     `gorm:"default:0;not null" json:"currentUsage"`
	DailyLimit   int     `gorm:"default:10000;not null" json:"dailyLimit"`
	Active       bool    `gorm:"default:true;not null" json:"active"`
	LastError    string  `gorm:"type:varchar(255);default:''" json:"lastError"`
	Comment      string  `gorm:"type:varchar(255);default:''" json:"comment"`
	Proxies      []Proxy `gorm:"many2many:credential_proxies;" json:"proxies"`
}

// BoundProxy returns the egress proxy used for every call made with this
// credential. In practice exactly one proxy is bound per credential; when
// several are bound the first one wins.
func (c *Credential) BoundProxy() *Proxy {
	if len(c.Proxies) == 0 {
		return nil
	}
	return &c.Proxies[0]
}
