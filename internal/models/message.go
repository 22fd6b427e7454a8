package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// UnmarshalJSON rejects roles outside the user/assistant union.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.Valid() {
		return fmt.Errorf("invalid message role %q", s)
	}
	*r = role
	return nil
}

// Message is one turn of a conversation. Slice order is the conversation order.
type Message struct {
	Role      Role   `bson:"role" json:"role" firestore:"role"`
	Content   string `bson:"content" json:"content" firestore:"content"`
	Timestamp *int64 `bson:"timestamp,omitempty" json:"timestamp,omitempty" firestore:"timestamp,omitempty"` // epoch millis, client side
}

func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Content) == ""
}

// ValidateMessages checks every role before a log is written.
func ValidateMessages(msgs []Message) error {
	for i, m := range msgs {
		if !m.Role.Valid() {
			return fmt.Errorf("message %d: invalid role %q", i, m.Role)
		}
	}
	return nil
}
