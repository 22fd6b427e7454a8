package models

import "time"

// Week aggregates vent activity for one ISO week (YYYY-Www).
type Week struct {
	WeekID            string     `bson:"week_id" json:"weekId"`
	VentEntryCount    int        `bson:"vent_entry_count" json:"ventEntryCount"`
	LastVentSessionAt *time.Time `bson:"last_vent_session_at,omitempty" json:"lastVentSessionAt,omitempty"`
	CreatedAt         time.Time  `bson:"created_at" json:"createdAt"`
	LastUpdated       time.Time  `bson:"last_updated" json:"lastUpdated"`
}
