package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SigningBytes returns the canonical serialization the provider signs: the
// payload JSON with the signature field omitted.
func (p WebhookPayload) SigningBytes() ([]byte, error) {
	p.Signature = ""
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}
	return b, nil
}

// Sign computes the hex HMAC-SHA256 of the payload under the given secret.
func (p WebhookPayload) Sign(secret string) (string, error) {
	body, err := p.SigningBytes()
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature authenticates the payload. Misconfiguration, a missing
// signature and a mismatched signature surface as distinct errors, checked in
// that order so operators can tell them apart.
func (p WebhookPayload) VerifySignature(secret string) error {
	if secret == "" {
		return ErrWebhookSecretMissing
	}
	if p.Signature == "" {
		return ErrMissingWebhookSignature
	}

	expected, err := p.Sign(secret)
	if err != nil {
		return err
	}

	supplied, err := hex.DecodeString(p.Signature)
	if err != nil {
		return ErrInvalidWebhookSignature
	}
	want, err := hex.DecodeString(expected)
	if err != nil {
		return ErrInvalidWebhookSignature
	}

	if !hmac.Equal(supplied, want) {
		return ErrInvalidWebhookSignature
	}
	return nil
}
