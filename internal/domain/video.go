package domain

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;index"`
	VideoFile   string    `json:"videoFile" gorm:"not null"`
	Thumbnail   string    `json:"thumbnail" gorm:"not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Duration    float64   `json:"duration" gorm:"not null"` // seconds
	Views       int64     `json:"views" gorm:"not null;default:0"`
	IsPublished bool      `json:"isPublished" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Owner *User `json:"-" gorm:"foreignKey:OwnerID"`
}

// WatchedVideo is a watch-history entry with its owner projected down to
// public fields.
type WatchedVideo struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Thumbnail   string       `json:"thumbnail"`
	VideoFile   string       `json:"videoFile"`
	Duration    float64      `json:"duration"`
	Views       int64        `json:"views"`
	CreatedAt   time.Time    `json:"createdAt"`
	Owner       OwnerSummary `json:"owner"`
}

func NewWatchedVideo(v *Video) WatchedVideo {
	w := WatchedVideo{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Thumbnail:   v.Thumbnail,
		VideoFile:   v.VideoFile,
		Duration:    v.Duration,
		Views:       v.Views,
		CreatedAt:   v.CreatedAt,
	}
	if v.Owner != nil {
		w.Owner = v.Owner.Summary()
	}
	return w
}
