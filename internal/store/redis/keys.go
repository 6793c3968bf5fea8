package redis

const (
	// KeyPrefixFeed is the prefix of the per-owner change feed channel
	KeyPrefixFeed = "smartmark:feed:"
	// KeyPrefixRevoked is the prefix for revoked session IDs
	KeyPrefixRevoked = "smartmark:session:revoked:"
)

// FeedChannel returns the Pub/Sub channel carrying an owner's bookmark changes
func FeedChannel(userID string) string {
	return KeyPrefixFeed + userID
}

// RevokedKey returns the Redis key marking a session ID as revoked
func RevokedKey(sessionID string) string {
	return KeyPrefixRevoked + sessionID
}
