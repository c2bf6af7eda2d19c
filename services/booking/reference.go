package booking

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const referencePrefix = "HVN"

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateBookingReference builds a human-readable, globally-unique booking
// token: PREFIX-<base36 timestamp>-<random>. The suffix comes from crypto/rand
// so concurrent creations cannot collide on the clock alone.
func GenerateBookingReference() (string, error) {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate booking reference: %w", err)
	}
	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}

	return fmt.Sprintf("%s-%s-%s", referencePrefix, ts, suffix), nil
}
