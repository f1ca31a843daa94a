package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"time"
)

// verificationWindow bounds how old a human-interaction attestation may be.
const verificationWindow = 5 * time.Minute

const maxVerificationBody = 4 << 10

var (
	errMalformedBody       = errors.New("invalid request body")
	errVerificationMissing = errors.New("verification required")
	errRequestExpired      = errors.New("request expired")
)

// verificationClaim is the client's human-interaction attestation. It is not
// a cryptographic proof of humanity, only a friction raiser; the bot
// classifier and rate limiter are the independent layers around it.
type verificationClaim struct {
	Verified  bool  `json:"verified"`
	Timestamp int64 `json:"timestamp"` // Unix milliseconds
}

// parseVerification validates the attestation body. The timestamp must fall
// within the last five minutes and must not be in the future; a missing
// timestamp is simply an expired one.
func parseVerification(body io.Reader, now time.Time) error {
	var claim verificationClaim
	if err := json.NewDecoder(io.LimitReader(body, maxVerificationBody)).Decode(&claim); err != nil {
		return errMalformedBody
	}

	if !claim.Verified {
		return errVerificationMissing
	}

	claimedAt := time.UnixMilli(claim.Timestamp)
	if claimedAt.After(now) || now.Sub(claimedAt) > verificationWindow {
		return errRequestExpired
	}

	return nil
}
