package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"

	"campushub/internal/domain"
)

// Payload is what a scanner reads back at check-in.
type Payload struct {
	RegistrationID int64 `json:"registrationId"`
	EventID        int64 `json:"eventId"`
	UserID         int64 `json:"userId"`
}

const imageSize = 256

// Issue encodes the registration credential into a scannable PNG data URI.
// High error correction keeps the code readable on dim phone screens.
func Issue(registrationID, eventID, userID int64) (string, error) {
	payload, err := json.Marshal(Payload{
		RegistrationID: registrationID,
		EventID:        eventID,
		UserID:         userID,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrQRGenerationFailed, err)
	}

	png, err := qrcode.Encode(string(payload), qrcode.High, imageSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrQRGenerationFailed, err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
