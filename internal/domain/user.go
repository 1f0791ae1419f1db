package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// User is the stored account record. PasswordHash and RefreshToken never
// leave the server.
type User struct {
	ID                 uuid.UUID                      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username           string                         `json:"username" gorm:"uniqueIndex;not null"`
	Email              string                         `json:"email" gorm:"uniqueIndex;not null"`
	FullName           string                         `json:"fullName" gorm:"index;not null"`
	AvatarURL          string                         `json:"avatar" gorm:"not null"`
	AvatarPublicID     string                         `json:"-"`
	CoverImageURL      string                         `json:"coverImage"`
	CoverImagePublicID string                         `json:"-"`
	WatchHistory       datatypes.JSONSlice[uuid.UUID] `json:"watchHistory" gorm:"type:jsonb;not null;default:'[]'"`
	PasswordHash       string                         `json:"-" gorm:"not null"`
	RefreshToken       *string                        `json:"-"`
	CreatedAt          time.Time                      `json:"createdAt"`
	UpdatedAt          time.Time                      `json:"updatedAt"`
}

// OwnerSummary is the slice of a user shown next to content they own.
type OwnerSummary struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Avatar   string    `json:"avatar"`
}

func (u *User) Summary() OwnerSummary {
	return OwnerSummary{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.AvatarURL,
	}
}
