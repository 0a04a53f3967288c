// Package invitetoken produces and parses the composite invitation
// tokens that travel in email links. The stored key is structured (club
// ObjectID + opaque random token); the composite string form
// "clubHex_millis_random" exists only at the wire boundary so older
// consumers can recover the club without a lookup.
package invitetoken

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pacerhub/pacerhub/internal/app/system/apperr"
)

// RandomLen is the length of the opaque random part.
const RandomLen = 20

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRandom returns a cryptographically random alphanumeric token.
func NewRandom() (string, error) {
	buf := make([]byte, RandomLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("invitetoken: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// Format builds the composite wire token for an invitation.
func Format(clubID primitive.ObjectID, createdAt time.Time, random string) string {
	return fmt.Sprintf("%s_%d_%s", clubID.Hex(), createdAt.UnixMilli(), random)
}

// Parse splits a composite wire token into its club ID and random part.
// Malformed tokens fail with InvalidArgument rather than panicking; the
// timestamp segment is validated but not returned, since verification
// always consults the stored record's expiry.
func Parse(token string) (clubID primitive.ObjectID, random string, err error) {
	malformed := apperr.New(apperr.InvalidArgument, "invalid invitation token format")

	parts := strings.Split(strings.TrimSpace(token), "_")
	if len(parts) != 3 {
		return primitive.NilObjectID, "", malformed
	}

	clubID, oidErr := primitive.ObjectIDFromHex(parts[0])
	if oidErr != nil {
		return primitive.NilObjectID, "", malformed
	}

	if ms, parseErr := strconv.ParseInt(parts[1], 10, 64); parseErr != nil || ms <= 0 {
		return primitive.NilObjectID, "", malformed
	}

	random = parts[2]
	if len(random) != RandomLen || !isAlnum(random) {
		return primitive.NilObjectID, "", malformed
	}

	return clubID, random, nil
}

func isAlnum(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
