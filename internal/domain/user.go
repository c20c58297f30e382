package domain

import "time"

// User is an account holder. Identity lives with Firebase; this record keys
// off the Firebase UID and carries the only mutable state in the system, the
// credit balance.
type User struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	FirebaseUID string    `json:"firebaseUid" db:"firebase_uid"`
	Name        *string   `json:"name,omitempty" db:"name"`
	Credits     int       `json:"credits" db:"credits"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
