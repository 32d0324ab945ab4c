package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrWishlistNotFound     = errors.New("wishlist not found")
	ErrItemNotFound         = errors.New("item not found")
	ErrShareNotFound        = errors.New("share not found")
	ErrPublicLinkNotFound   = errors.New("public link not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrSuggestionNotFound   = errors.New("suggestion not found")

	// ErrDuplicateShare is returned when a user already holds a share on a list.
	ErrDuplicateShare = errors.New("user already has a share on this wishlist")
)
