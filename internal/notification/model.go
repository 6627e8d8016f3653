package notification

import "time"

const (
	TypeOrder    = "order"
	TypeDelivery = "delivery"
)

type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Message   string
	RelatedID int64
	IsRead    bool
	CreatedAt time.Time
}
