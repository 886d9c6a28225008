package store

import "strconv"

// Slot keys. Theme and session are global; favorites are partitioned per user.
const (
	KeyTheme       = "theme"
	KeySessionUser = "session-user"
	KeyAllUsers    = "all-users"

	// FavoritesPrefix prefixes every per-user favorites slot.
	FavoritesPrefix = "favorites-"
)

// FavoritesKey returns the favorites slot key for a user.
func FavoritesKey(userID int64) string {
	return FavoritesPrefix + strconv.FormatInt(userID, 10)
}

// ParseFavoritesKey extracts the user ID from a favorites slot key.
func ParseFavoritesKey(key string) (int64, bool) {
	if len(key) <= len(FavoritesPrefix) || key[:len(FavoritesPrefix)] != FavoritesPrefix {
		return 0, false
	}
	id, err := strconv.ParseInt(key[len(FavoritesPrefix):], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
