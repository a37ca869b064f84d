package sms

import (
	"context"
	"fmt"

	"github.com/mkheight/hostel-backend/pkg/validator"
)

// Gateway sends plain-text SMS alerts
type Gateway interface {
	// Send delivers message to every phone. Invalid numbers are skipped;
	// an error means nothing could be delivered.
	Send(ctx context.Context, phones []string, message string) error

	// Name returns the name of the gateway implementation
	Name() string
}

var phones = validator.NewPhoneValidator()

// normalizeRecipients converts phones to E.164 and drops invalid or repeated numbers
func normalizeRecipients(list []string) ([]string, error) {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, p := range list {
		e164, err := phones.E164(p)
		if err != nil || seen[e164] {
			continue
		}
		seen[e164] = true
		out = append(out, e164)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid recipients in %d numbers", len(list))
	}
	return out, nil
}
