package media

import (
	"errors"

	"github.com/rs/zerolog"
	twilio "github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	videov1 "github.com/twilio/twilio-go/rest/video/v1"

	"telemeet-transcription-service/internal/observability/logging"
)

// Twilio error code returned when a room with the unique name already
// exists and is in progress.
const codeRoomExists = 53113

// RoomProvisioner ensures relay-side rooms exist before participants
// connect with their tokens.
type RoomProvisioner struct {
	client *twilio.RestClient
	log    zerolog.Logger
}

// NewRoomProvisioner creates a provisioner. Returns nil when credentials
// are absent; sessions then exist locally only.
func NewRoomProvisioner(accountSID, apiKeySID, apiSecret string) *RoomProvisioner {
	if accountSID == "" || apiKeySID == "" || apiSecret == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   apiKeySID,
		Password:   apiSecret,
		AccountSid: accountSID,
	})
	return &RoomProvisioner{
		client: client,
		log:    logging.WithComponent("media.provisioner"),
	}
}

// EnsureRoom creates the relay room with the given unique name if it does
// not already exist. Find-or-create: the room-exists error is success.
func (p *RoomProvisioner) EnsureRoom(name string) error {
	params := &videov1.CreateRoomParams{}
	params.SetUniqueName(name)
	params.SetType("group")

	_, err := p.client.VideoV1.CreateRoom(params)
	if err != nil {
		var restErr *twclient.TwilioRestError
		if errors.As(err, &restErr) && restErr.Code == codeRoomExists {
			p.log.Debug().Str("room", name).Msg("relay room already exists")
			return nil
		}
		return err
	}
	p.log.Info().Str("room", name).Msg("relay room created")
	return nil
}
