package providers

import (
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	studioApi "github.com/twilio/twilio-go/rest/studio/v2"

	"alert-service/internal/config"
	"alert-service/internal/logging"
	"alert-service/internal/utils"
)

// SendCall places a voice call by launching the configured Twilio Studio
// flow with the message as a flow parameter. It returns the execution SID.
// An empty recipient falls back to the configured default phone number.
func SendCall(cfg config.Config, logger *logging.Logger, recipient, body string) (string, error) {
	if !cfg.Twilio.Enabled {
		return "", fmt.Errorf("twilio provider is disabled")
	}
	if recipient == "" {
		recipient = cfg.Twilio.DefaultToPhone
	}
	if recipient == "" {
		return "", fmt.Errorf("no call recipient configured")
	}
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" || cfg.Twilio.FlowSID == "" || cfg.Twilio.DefaultFromPhone == "" {
		return "", fmt.Errorf("missing Twilio configuration: AccountSID, AuthToken, FlowSID, or DefaultFromPhone is empty")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.Twilio.AccountSID,
		Password: cfg.Twilio.AuthToken,
	})

	params := &studioApi.CreateExecutionParams{}
	params.SetTo(recipient)
	params.SetFrom(cfg.Twilio.DefaultFromPhone)
	params.SetParameters(map[string]interface{}{"message": body})

	var sid string
	err := utils.Retry(logger, 3, time.Second, func() error {
		exec, err := client.StudioV2.CreateExecution(cfg.Twilio.FlowSID, params)
		if err != nil {
			return fmt.Errorf("failed to start call flow to %s: %w", recipient, err)
		}
		if exec.Sid != nil {
			sid = *exec.Sid
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return sid, nil
}
