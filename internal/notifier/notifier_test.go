package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/oshokin/study-safe-server/internal/config"
)

var errTestSend = errors.New("test send error")

// fakeAPI records the last message creation call.
type fakeAPI struct {
	// params stores the parameters of the last call.
	params *twilioapi.CreateMessageParams
	// err is the error to return from CreateMessage.
	err error
}

// CreateMessage captures params and returns the configured error.
func (f *fakeAPI) CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error) {
	f.params = params

	if f.err != nil {
		return nil, f.err
	}

	sid := "SM_test"

	return &twilioapi.ApiV2010Message{Sid: &sid}, nil
}

// TestNewSMS_RequiresFullCredentials asserts partial configuration is rejected.
func TestNewSMS_RequiresFullCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewSMS(config.NotifierConfig{AccountSID: "AC_test"})
	require.Error(t, err)

	sms, err := NewSMS(config.NotifierConfig{
		AccountSID: "AC_test",
		AuthToken:  "token",
		From:       "+15550100000",
		To:         "+15550100001",
	})
	require.NoError(t, err)
	require.NotNil(t, sms)
}

// TestSMS_SendAlert verifies the message targets the fixed destination with the fixed body.
func TestSMS_SendAlert(t *testing.T) {
	t.Parallel()

	api := new(fakeAPI)
	sms := &SMS{
		api:  api,
		from: "+15550100000",
		to:   "+15550100001",
	}

	require.NoError(t, sms.SendAlert(context.Background()))
	require.NotNil(t, api.params)
	require.Equal(t, "+15550100001", *api.params.To)
	require.Equal(t, "+15550100000", *api.params.From)
	require.Equal(t, alertBody, *api.params.Body)
}

// TestSMS_SendAlertError verifies dispatch failures surface as wrapped errors.
func TestSMS_SendAlertError(t *testing.T) {
	t.Parallel()

	sms := &SMS{
		api:  &fakeAPI{err: errTestSend},
		from: "+15550100000",
		to:   "+15550100001",
	}

	err := sms.SendAlert(context.Background())
	require.ErrorIs(t, err, errTestSend)
}

// TestFromConfig verifies the no-op fallback when credentials are absent.
func TestFromConfig(t *testing.T) {
	t.Parallel()

	n := FromConfig(context.Background(), config.NotifierConfig{})
	require.IsType(t, Noop{}, n)
	require.NoError(t, n.SendAlert(context.Background()))

	n = FromConfig(context.Background(), config.NotifierConfig{
		AccountSID: "AC_test",
		AuthToken:  "token",
		From:       "+15550100000",
		To:         "+15550100001",
	})
	require.IsType(t, &SMS{}, n)
}
