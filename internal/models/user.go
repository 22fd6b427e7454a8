package models

import (
	"strings"
	"time"
)

// User is created on first authentication. Admin keeps whatever encoding the
// store holds; use IsPrivileged to read it.
type User struct {
	UID         string    `bson:"uid" json:"uid"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	DisplayName string    `bson:"display_name,omitempty" json:"displayName,omitempty"`
	PhotoURL    string    `bson:"photo_url,omitempty" json:"photoURL,omitempty"`
	Admin       any       `bson:"admin,omitempty" json:"admin,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	LastLoginAt time.Time `bson:"last_login_at" json:"lastLoginAt"`
}

// UserProfile carries the identity provider fields refreshed on every login.
type UserProfile struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

func (u *User) IsPrivileged() bool {
	if u == nil {
		return false
	}
	return IsTruthyFlag(u.Admin)
}

// IsTruthyFlag normalizes the privileged flag: true, "true" and 1 all count.
func IsTruthyFlag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case *bool:
		return t != nil && *t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	case int:
		return t == 1
	case int32:
		return t == 1
	case int64:
		return t == 1
	case float32:
		return t == 1
	case float64:
		return t == 1
	default:
		return false
	}
}
