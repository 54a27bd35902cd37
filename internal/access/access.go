// Package access holds the authorization rules for messages.
package access

import "warbler/internal/models"

// CanDeleteMessage reports whether the requester may delete msg.
// Only the owner may; an anonymous requester (nil) never may.
func CanDeleteMessage(requesterID *uint, msg *models.Message) bool {
	if requesterID == nil || msg == nil {
		return false
	}
	return *requesterID == msg.UserID
}

// IsOwnProfile reports whether the requester is looking at their own account.
func IsOwnProfile(requesterID *uint, user *models.User) bool {
	if requesterID == nil || user == nil {
		return false
	}
	return *requesterID == user.ID
}
