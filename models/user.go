package models

// User is the slice of the platform's user document this core reads:
// the push token and role needed to deliver notifications. Account
// management itself lives in the identity service.
type User struct {
	ID       string `bson:"id" json:"id"`
	Role     string `bson:"role" json:"role"` // "user" | "specialist" | "admin"
	FCMToken string `bson:"fcmToken,omitempty" json:"-"`
}
