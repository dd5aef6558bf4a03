package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/oshokin/study-safe-server/internal/config"
	"github.com/oshokin/study-safe-server/internal/logger"
)

// alertBody is the fixed text of every alarm SMS.
const alertBody = "Your Study Safe device is on the move."

// errIncompleteCredentials is returned when only part of the notifier
// configuration is present.
var errIncompleteCredentials = errors.New("notifier configuration is incomplete")

// Notifier sends an out-of-band alert when the device raises an alarm.
// Implementations own their retry and failure domain entirely: callers
// dispatch and forget, logging the error if one comes back.
type Notifier interface {
	SendAlert(ctx context.Context) error
}

// restAPI is the slice of the Twilio client the SMS notifier uses.
// Narrowed to an interface so tests can stand in for the real API.
type restAPI interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// SMS sends alarm alerts through the Twilio REST API to a fixed,
// configured destination number. Destinations submitted by clients are
// never used here.
type SMS struct {
	// api issues the message creation call.
	api restAPI
	// from is the sender number.
	from string
	// to is the fixed destination number.
	to string
}

// NewSMS builds an SMS notifier from configuration.
// All four notifier fields must be present.
func NewSMS(cfg config.NotifierConfig) (*SMS, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" || cfg.To == "" {
		return nil, errIncompleteCredentials
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &SMS{
		api:  client.Api,
		from: cfg.From,
		to:   cfg.To,
	}, nil
}

// SendAlert delivers the alarm SMS to the configured destination.
func (s *SMS) SendAlert(ctx context.Context) error {
	params := new(twilioapi.CreateMessageParams)
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(alertBody)

	message, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	sid := ""
	if message != nil && message.Sid != nil {
		sid = *message.Sid
	}

	logger.InfoKV(ctx, "Alarm SMS sent", "to", s.to, "sid", sid)

	return nil
}

// Noop is used when notifier credentials are absent: alerts are logged
// instead of sent, matching local development needs.
type Noop struct{}

// SendAlert logs that an alert would have been sent.
func (Noop) SendAlert(ctx context.Context) error {
	logger.Warn(ctx, "Notifier is not configured, alarm SMS skipped")

	return nil
}

// FromConfig returns the SMS notifier when fully configured and the Noop
// notifier otherwise. Partial credentials are reported, not fatal: the
// bridge must keep serving the device either way.
//
//nolint:ireturn // Callers depend on the Notifier interface.
func FromConfig(ctx context.Context, cfg config.NotifierConfig) Notifier {
	sms, err := NewSMS(cfg)
	if err != nil {
		if cfg.AccountSID != "" || cfg.AuthToken != "" || cfg.From != "" || cfg.To != "" {
			logger.Warnf(ctx, "Falling back to no-op notifier: %v", err)
		}

		return Noop{}
	}

	return sms
}
