package domain

import "strings"

// RecordKeyPrefix prefixes every persisted draft key.
const RecordKeyPrefix = "draft-"

// RecordKey returns the storage key for a draft id.
func RecordKey(id string) string {
	return RecordKeyPrefix + id
}

// IDFromKey strips the record prefix. The second result is false when key is
// not a draft record key.
func IDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, RecordKeyPrefix) || len(key) == len(RecordKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, RecordKeyPrefix), true
}
