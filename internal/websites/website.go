package websites

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"voicero/internal/models"
)

// WebsiteNotFoundError represents an error when a website is not found
type WebsiteNotFoundError struct {
	Domain string
	ID     uint
}

func (e *WebsiteNotFoundError) Error() string {
	if e.Domain != "" {
		return fmt.Sprintf("website not found for domain: %s", e.Domain)
	}
	return fmt.Sprintf("website not found for id: %d", e.ID)
}

// NewWebsiteNotFoundError creates a new WebsiteNotFoundError
func NewWebsiteNotFoundError(domain string) *WebsiteNotFoundError {
	return &WebsiteNotFoundError{Domain: domain}
}

// Platform is the store software a website runs on.
type Platform string

const (
	PlatformWordPress Platform = "wordpress"
	PlatformShopify   Platform = "shopify"
	PlatformCustom    Platform = "custom"
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformWordPress, PlatformShopify, PlatformCustom:
		return true
	}
	return false
}

// Website is a connected site. ConversationStats caches the last generated
// conversation report so dashboards do not recompute it on every view.
type Website struct {
	ID                           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Domain                       string      `gorm:"unique;not null" json:"domain"`
	Platform                     Platform    `gorm:"size:16;default:'custom'" json:"platform"`
	ConversationStats            models.JSON `gorm:"type:text" json:"conversation_stats,omitempty"`
	ConversationStatsGeneratedAt *time.Time  `json:"conversation_stats_generated_at,omitempty"`
	CreatedAt                    time.Time   `json:"created_at"`
}

// GetWebsite retrieves a website by id.
func GetWebsite(db *gorm.DB, id uint) (*Website, error) {
	var website Website
	if err := db.First(&website, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &WebsiteNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("unexpected error querying website: %w", err)
	}
	return &website, nil
}

// GetWebsiteByDomain retrieves a website by domain. Subdomains of a
// connected domain resolve to it.
func GetWebsiteByDomain(db *gorm.DB, host string) (*Website, error) {
	domain := BaseDomainForHost(strings.TrimSpace(host))

	var website Website
	if err := db.Where("domain = ?", domain).First(&website).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWebsiteNotFoundError(domain)
		}
		return nil, fmt.Errorf("unexpected error querying website: %w", err)
	}
	return &website, nil
}

// ListWebsites retrieves all websites ordered by id.
func ListWebsites(db *gorm.DB) ([]Website, error) {
	var websites []Website
	if err := db.Order("id ASC").Find(&websites).Error; err != nil {
		return nil, fmt.Errorf("failed to get websites: %w", err)
	}
	return websites, nil
}

// CreateWebsite creates a new website
func CreateWebsite(db *gorm.DB, website *Website) error {
	website.Domain = BaseDomainForHost(website.Domain)
	website.CreatedAt = time.Now().UTC()

	if website.Platform == "" {
		website.Platform = PlatformCustom
	}
	if !website.Platform.Valid() {
		return fmt.Errorf("unsupported platform %q", website.Platform)
	}

	return db.Create(website).Error
}

// BaseDomainForHost returns the canonical base domain for a hostname, preserving localhost
// semantics while collapsing subdomains (e.g. shop.example.com -> example.com).
func BaseDomainForHost(host string) string {
	parts := strings.Split(strings.ToLower(host), ".")
	if len(parts) < 2 {
		return strings.ToLower(host)
	}

	lastPart := parts[len(parts)-1]
	if lastPart == "localhost" {
		return "localhost"
	}
	secondLast := parts[len(parts)-2]

	// Country TLDs with a second level need three labels.
	if len(parts) > 2 && ccSecondLevel[secondLast+"."+lastPart] {
		return fmt.Sprintf("%s.%s.%s", parts[len(parts)-3], secondLast, lastPart)
	}
	return fmt.Sprintf("%s.%s", secondLast, lastPart)
}

var ccSecondLevel = map[string]bool{
	"co.uk":  true,
	"org.uk": true,
	"co.jp":  true,
	"co.nz":  true,
	"co.za":  true,
	"co.in":  true,
	"com.au": true,
	"com.br": true,
	"com.mx": true,
}
