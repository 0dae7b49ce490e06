package model

import "time"

// PropertyLock is an advisory lock serializing booking creation per property.
// The unique _id insert is the serialization point: two concurrent proposals
// for the same property race on the insert and exactly one wins.
type PropertyLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
