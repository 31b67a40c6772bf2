package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Level is the numeric role of a user in the system.
type Level int

// Role levels as stored on the user document.
const (
	LevelStudent Level = 1
	LevelTrainer Level = 2
	LevelAdmin   Level = 3
)

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	return l == LevelStudent || l == LevelTrainer || l == LevelAdmin
}

func (l Level) String() string {
	switch l {
	case LevelStudent:
		return "student"
	case LevelTrainer:
		return "trainer"
	case LevelAdmin:
		return "admin"
	}
	return "unknown"
}

// User represents an account in the directory (student, trainer or admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Level        Level              `bson:"level" json:"level"`
	AvatarURL    string             `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Student-specific ---
	// TrainerID is set as soon as a link is requested; PendingTrainerApproval
	// stays true until the trainer decides.
	TrainerID              *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	PendingTrainerApproval bool                `bson:"pendingTrainerApproval" json:"pendingTrainerApproval"`

	// --- Trainer-specific ---
	TrainerCode string `bson:"trainerCode,omitempty" json:"trainerCode,omitempty"`

	// --- Presence ---
	IsOnline bool       `bson:"isOnline" json:"isOnline"`
	LastSeen *time.Time `bson:"lastSeen,omitempty" json:"lastSeen,omitempty"`
}

func (u *User) IsStudent() bool { return u.Level == LevelStudent }
func (u *User) IsTrainer() bool { return u.Level == LevelTrainer }
func (u *User) IsAdmin() bool   { return u.Level == LevelAdmin }

// HasActiveTrainer reports whether the student is linked to trainerID and
// the link has been approved.
func (u *User) HasActiveTrainer(trainerID primitive.ObjectID) bool {
	return u.TrainerID != nil && *u.TrainerID == trainerID && !u.PendingTrainerApproval
}

// IsPendingWith reports whether the student awaits approval from trainerID.
func (u *User) IsPendingWith(trainerID primitive.ObjectID) bool {
	return u.TrainerID != nil && *u.TrainerID == trainerID && u.PendingTrainerApproval
}

// Capabilities returns the capability set for the user's level.
func (u *User) Capabilities() Capabilities {
	return CapabilitiesFor(u.Level)
}
