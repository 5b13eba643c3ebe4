package handlers

import (
	"time"

	"moodring/internal/models"
)

// EmotionDTO groups the name with its optional attributes the way clients
// submit and render them.
type EmotionDTO struct {
	Name       string                   `json:"name"`
	Attributes models.EmotionAttributes `json:"attributes"`
}

// LocationDTO is the wire shape of a location; null coordinates and name
// mean the location was redacted or never set.
type LocationDTO struct {
	Name        *string    `json:"name"`
	Coordinates *[]float64 `json:"coordinates"`
	IsShared    bool       `json:"isShared"`
}

// CheckInDTO is the display-safe projection of a check-in.
type CheckInDTO struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	Emotion    EmotionDTO   `json:"emotion"`
	Reason     *string      `json:"reason,omitempty"`
	People     []string     `json:"people"`
	Activities []string     `json:"activities"`
	Location   *LocationDTO `json:"location"`
	Privacy    string       `json:"privacy"`
	Timestamp  time.Time    `json:"timestamp"`
	LikesCount int          `json:"likesCount"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ToCheckInDTO converts a model to its projection. includeLocation=false
// drops the location entirely regardless of sharing.
func ToCheckInDTO(c models.CheckIn, includeLocation bool) CheckInDTO {
	dto := CheckInDTO{
		ID:         c.ID,
		UserID:     c.UserID,
		Emotion:    EmotionDTO{Name: c.EmotionName, Attributes: c.EmotionAttributes},
		Reason:     c.Reason,
		People:     orEmpty(c.People),
		Activities: orEmpty(c.Activities),
		Privacy:    c.Privacy,
		Timestamp:  c.OccurredAt,
		LikesCount: c.LikeCount,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if includeLocation && c.HasLocation() {
		loc := &LocationDTO{Name: c.LocationName, IsShared: c.LocationShared}
		if c.LocationLon != nil && c.LocationLat != nil {
			coords := []float64{*c.LocationLon, *c.LocationLat}
			loc.Coordinates = &coords
		}
		dto.Location = loc
	}
	return dto
}

func toCheckInDTOs(list []models.CheckIn, includeLocation bool) []CheckInDTO {
	out := make([]CheckInDTO, 0, len(list))
	for _, c := range list {
		out = append(out, ToCheckInDTO(c, includeLocation))
	}
	return out
}

func orEmpty(l models.StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}

// UserDTO keeps password material out of responses and formats timestamps.
type UserDTO struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name,omitempty"`
	IsAdmin     bool    `json:"is_admin"`
	CreatedAt   string  `json:"created_at"`
}

func ToUserDTO(u models.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}
