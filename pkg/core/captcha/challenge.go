// Package captcha issues and verifies single-use image captcha challenges.
//
// A challenge is valid for five minutes after creation and is consumed by the
// first verification attempt, whether that attempt matches or not.
package captcha

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ValidFor is the fixed validity window of a challenge.
const ValidFor = 5 * time.Minute

var ErrNotFound = errors.New("captcha challenge not found")

// Challenge is one issued captcha. Challenge is the text drawn on the image,
// Response the alternate accepted answer (lower-cased text, or the result of a
// math expression).
type Challenge struct {
	Key       string    `gorm:"column:hashkey;primaryKey;type:varchar(36)" json:"key"`
	Challenge string    `gorm:"type:varchar(32);not null" json:"challenge"`
	Response  string    `gorm:"type:varchar(32);not null" json:"response"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Challenge) TableName() string {
	return "captcha_store"
}

// Expired reports whether the challenge is older than ValidFor at now.
func (c *Challenge) Expired(now time.Time) bool {
	return now.Sub(c.CreatedAt) > ValidFor
}

// Matches compares answer case-sensitively with both accepted values.
func (c *Challenge) Matches(answer string) bool {
	return answer == c.Response || answer == c.Challenge
}

// Store persists challenges. Take must remove the challenge it returns so that
// concurrent verifiers cannot both consume it; a missing key yields ErrNotFound.
type Store interface {
	Save(ctx context.Context, c *Challenge) error
	Take(ctx context.Context, key string) (*Challenge, error)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Challenge{})
}
