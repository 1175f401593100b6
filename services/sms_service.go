package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"safetrail/models"
)

// TwilioSMSService sends SMS through Twilio. It implements
// interfaces.MessagingTransport. When Twilio credentials are missing
// the transport reports unavailable and the dispatcher records
// failures without attempting sends.
type TwilioSMSService struct {
	client       *twilio.RestClient
	fromNumber   string
	configured   bool
	sendDeadline time.Duration
}

func NewTwilioSMSService(accountSID, authToken, fromNumber string, sendDeadline time.Duration) *TwilioSMSService {
	configured := accountSID != "" && authToken != "" && fromNumber != ""

	var client *twilio.RestClient
	if configured {
		client = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
	} else {
		logrus.Warn("Twilio not configured, SMS transport unavailable")
	}

	return &TwilioSMSService{
		client:       client,
		fromNumber:   fromNumber,
		configured:   configured,
		sendDeadline: sendDeadline,
	}
}

// IsAvailable reports whether the transport can attempt sends at all.
func (ts *TwilioSMSService) IsAvailable() bool {
	return ts.configured
}

// SendSMS delivers one message, retrying transient failures with
// exponential backoff until the deadline. The returned SendResult is
// populated even on error.
func (ts *TwilioSMSService) SendSMS(ctx context.Context, to, body string) (*models.SendResult, error) {
	if !ts.configured {
		err := fmt.Errorf("SMS transport not configured")
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	ctx, cancel := context.WithTimeout(ctx, ts.sendDeadline)
	defer cancel()

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(ts.fromNumber)
	params.SetBody(body)

	var sid string
	operation := func() error {
		resp, err := ts.client.Api.CreateMessage(params)
		if err != nil {
			return err
		}
		if resp.Sid != nil {
			sid = *resp.Sid
		}
		return nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		logrus.Errorf("Failed to send SMS to %s: %v", to, err)
		return &models.SendResult{Success: false, Error: err.Error()}, err
	}

	return &models.SendResult{Success: true, MessageID: sid}, nil
}

// SendVerificationSMS sends a contact verification code.
func (ts *TwilioSMSService) SendVerificationSMS(ctx context.Context, phoneNumber, code string) error {
	message := fmt.Sprintf("Your SafeTrail verification code is: %s. This code expires in 10 minutes.", code)
	_, err := ts.SendSMS(ctx, phoneNumber, message)
	return err
}
