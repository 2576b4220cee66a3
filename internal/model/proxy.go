package model

import (
	"fmt"
	"net/url"

	"gorm.io/gorm"
)

// Proxy is a credentialed egress relay. Upstream calls made with a credential
// are routed through the proxy bound to it.
type Proxy struct {
	gorm.Model
	Host     string `gorm:"type:varchar(255);not null" json:"host"`
	Port     int    `gorm:"not null" json:"port"`
	Login    string `gorm:"type:varchar(255);default:''" json:"login"`
	Password string `gorm:"type:varchar(255);default:''" json:"password"`
	Protocol string `gorm:"type:varchar(50);default:'http'" json:"protocol"`
}

// URL builds the proxy endpoint in the form expected by http.ProxyURL.
func (p *Proxy) URL() *url.URL {
	u := &url.URL{
		Scheme: p.Protocol,
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
	if p.Login != "" {
		u.User = url.UserPassword(p.Login, p.Password)
	}
	return u
}
