package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

// signatureTolerance bounds how stale a signed timestamp may be. Replays of
// old deliveries outside this window are rejected.
const signatureTolerance = 5 * time.Minute

// ErrInvalidSignature covers malformed headers, digest mismatches and
// out-of-tolerance timestamps. The payload must not be processed.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifySignature checks a header of the form "t=<unix>,v1=<hex>" against the
// HMAC-SHA256 of "<t>.<payload>" keyed with the shared webhook secret.
// Multiple v1 entries are accepted if any matches (secret rotation).
//
// An empty secret fails closed: anyone can compute an empty-key HMAC, so a
// missing secret must never degrade into accepting attacker-signed payloads.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	if secret == "" {
		return ErrInvalidSignature
	}
	var ts string
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if ts == "" || len(candidates) == 0 {
		return ErrInvalidSignature
	}

	epoch, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	signedAt := time.Unix(epoch, 0)
	if d := now.Sub(signedAt); d > signatureTolerance || d < -signatureTolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, c := range candidates {
		got, err := hex.DecodeString(c)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, got) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign produces a signature header for the given payload. Exists for tests
// and local webhook simulation.
func Sign(payload []byte, secret string, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
