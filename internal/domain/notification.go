package domain

import "time"

// NotificationType classifies an inbox entry.
type NotificationType string

// Notification types.
const (
	NotificationNewReview      NotificationType = "NEW_REVIEW"
	NotificationPriceDrop      NotificationType = "PRICE_DROP"
	NotificationWishlistUpdate NotificationType = "WISHLIST_UPDATE"
	NotificationGeneral        NotificationType = "GENERAL"
)

// Notification is a local inbox entry.
type Notification struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
}
