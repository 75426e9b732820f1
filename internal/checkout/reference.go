package checkout

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateReference builds the provider payment reference:
// upper(shopSlug + "-" + base36(nowMillis) + 6 random base36 chars).
// It is generated once per checkout session and persisted on the cart, so
// retries and cancelled inline payments reuse the same reference.
func GenerateReference(shopSlug string, now time.Time) string {
	slug := sanitizeSlug(shopSlug)
	millis := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper(slug + "-" + millis + randomBase36(6))
}

// GenerateOrderNumber builds a human-readable order number. Uniqueness is
// enforced by the orders table constraint; the random tail makes collisions
// within the same millisecond vanishingly rare.
func GenerateOrderNumber(now time.Time) string {
	millis := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper("ORD-" + millis + "-" + randomBase36(4))
}

func sanitizeSlug(slug string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(slug) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "shop"
	}
	return b.String()
}

func randomBase36(length int) string {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the host is broken; fall back to a
		// time-derived tail rather than panicking mid-checkout.
		tail := strconv.FormatInt(time.Now().UnixNano(), 36)
		if len(tail) > length {
			tail = tail[len(tail)-length:]
		}
		return tail
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return string(out)
}
