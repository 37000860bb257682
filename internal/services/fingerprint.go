package services

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ErrDuplicateSubmission reports a submission whose fingerprint was already
// recorded for the same cycle and day bucket.
var ErrDuplicateSubmission = NewConflictError("a response for this survey cycle was already submitted today")

// DayBucket formats t as a UTC YYYY-MM-DD dedup bucket.
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Fingerprint derives the one-way submission dedup key: a SHA-256 hex digest
// over ip, userAgent, cycleID and dayBucket joined by "-". The digest is a
// deduplication key only; it cannot be reversed and no raw identity is
// stored alongside it. An empty dayBucket means today in UTC.
// One network/agent pair can therefore submit once per UTC day per cycle.
// That is spoofable by changing address or agent, which is the accepted
// tradeoff of not keeping respondent identity at all.
func Fingerprint(ip, userAgent, cycleID, dayBucket string) string {
	if dayBucket == "" {
		dayBucket = DayBucket(time.Now())
	}
	data := ip + "-" + userAgent + "-" + cycleID + "-" + dayBucket
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// ValidFingerprint reports whether s looks like a fingerprint: exactly 64
// hex characters, either case.
func ValidFingerprint(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Admit is the fast-path duplicate check against an in-memory set of already
// accepted fingerprints. It is advisory only: two concurrent submissions can
// both pass it, so the store's unique constraint on the stored hash remains
// the authoritative gate and its violation maps back to the same error.
func Admit(fingerprint string, existing map[string]struct{}) error {
	if _, ok := existing[strings.ToLower(fingerprint)]; ok {
		return ErrDuplicateSubmission
	}
	return nil
}
