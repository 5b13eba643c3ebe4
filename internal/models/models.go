package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  *string   `db:"display_name" json:"display_name,omitempty"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Privacy levels for a check-in. Default is private.
const (
	PrivacyPrivate = "private"
	PrivacyFriends = "friends"
	PrivacyPublic  = "public"
)

func ValidPrivacy(p string) bool {
	return p == PrivacyPrivate || p == PrivacyFriends || p == PrivacyPublic
}

// EmotionAttributes are the optional per-check-in mood dimensions.
// A nil field means the user did not record that dimension; it must be
// excluded from averages rather than counted as zero.
type EmotionAttributes struct {
	Pleasantness *float64 `db:"pleasantness" json:"pleasantness"`
	Intensity    *float64 `db:"intensity" json:"intensity"`
	Control      *float64 `db:"control" json:"control"`
	Clarity      *float64 `db:"clarity" json:"clarity"`
}

// CheckIn is a single emotional self-report. OccurredAt is the user-content
// timestamp every date-window computation keys on; CreatedAt/UpdatedAt are
// record metadata only.
type CheckIn struct {
	ID          string `db:"id" json:"id"`
	UserID      string `db:"user_id" json:"user_id"`
	EmotionName string `db:"emotion_name" json:"emotion_name"` // lowercased
	EmotionAttributes
	Reason         *string    `db:"reason" json:"reason,omitempty"` // encrypted at rest
	People         StringList `db:"people" json:"people"`
	Activities     StringList `db:"activities" json:"activities"`
	LocationName   *string    `db:"location_name" json:"location_name,omitempty"`
	LocationLon    *float64   `db:"location_lon" json:"location_lon,omitempty"`
	LocationLat    *float64   `db:"location_lat" json:"location_lat,omitempty"`
	LocationShared bool       `db:"location_shared" json:"location_shared"`
	Privacy        string     `db:"privacy" json:"privacy"`
	OccurredAt     time.Time  `db:"occurred_at" json:"occurred_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`

	// Derived by queries joining checkin_likes; not a column.
	LikeCount int `db:"like_count" json:"like_count"`
}

// HasLocation reports whether the check-in carries any location data at all.
func (c *CheckIn) HasLocation() bool {
	return c.LocationName != nil || (c.LocationLon != nil && c.LocationLat != nil)
}

// RedactLocation strips location data from the check-in, used when the
// viewer is not the owner and the location was not shared.
func (c *CheckIn) RedactLocation() {
	c.LocationName = nil
	c.LocationLon = nil
	c.LocationLat = nil
	c.LocationShared = false
}

// StringList is a []string stored as a JSONB column. Postgres text arrays
// would need a driver-specific codec; JSONB round-trips through the pgx
// stdlib driver with plain encoding/json.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("models: cannot scan %T into StringList", src)
	}
}
