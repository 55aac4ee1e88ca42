package tokenrepo

import "github.com/lib/pq"

// DeviceToken is a browser registration token saved by the client gateway.
// Json tag is used for caching and the redis store.
type DeviceToken struct {
	ID     int64          `json:"id" db:"id" validate:"required"`
	Token  string         `json:"token" db:"token" validate:"required"`
	UserID string         `json:"user_id" db:"user_id"`
	Topics pq.StringArray `json:"topics" db:"topics"`

	// Timestamp using integer as unix microsecond in UTC
	CreatedAt int64 `json:"created_at" db:"created_at" validate:"required"`
	UpdatedAt int64 `json:"updated_at" db:"updated_at" validate:"required"`
}

// HasTopic reports whether the token is subscribed to topic.
func (d DeviceToken) HasTopic(topic string) bool {
	for _, t := range d.Topics {
		if t == topic {
			return true
		}
	}

	return false
}
