package types

import "time"

// User is a member profile. Email doubles as the user identity throughout the
// system; Nickname is the public display name.
type User struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Email      string    `bson:"email" json:"email"`
	Nickname   string    `bson:"nickname" json:"nickname"`
	ProfileURL string    `bson:"profile_url,omitempty" json:"profileUrl,omitempty"`
	IsAdmin    bool      `bson:"is_admin" json:"-"`
	PushTokens []string  `bson:"push_tokens,omitempty" json:"-"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
}

// Follow is one user's follow graph document. Followers and Following hold
// user emails.
type Follow struct {
	ID        string   `bson:"_id,omitempty" json:"-"`
	UserEmail string   `bson:"user_email" json:"userEmail"`
	Followers []string `bson:"followers" json:"followers"`
	Following []string `bson:"following" json:"following"`
}
