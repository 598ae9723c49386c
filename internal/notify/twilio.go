package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/bstrong/door-access/pkg/config"
)

// TwilioMessenger sends SMS through the Twilio REST API.
type TwilioMessenger struct {
	client  *twilio.RestClient
	from    string
	Enabled bool
}

func NewTwilioMessenger(cfg config.TwilioConfig) *TwilioMessenger {
	m := &TwilioMessenger{
		from:    cfg.FromNumber,
		Enabled: cfg.AccountSID != "" && cfg.AuthToken != "" && cfg.FromNumber != "",
	}
	if m.Enabled {
		m.client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		})
	}
	return m
}

func (m *TwilioMessenger) SendSMS(ctx context.Context, to, body string) error {
	if !m.Enabled {
		return errors.New("twilio messenger disabled (missing TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN or TWILIO_PHONE_NUMBER)")
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(m.from)
	params.SetBody(body)

	if _, err := m.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	return nil
}
