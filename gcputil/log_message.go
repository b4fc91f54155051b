package gcputil

import (
	"github.com/mongodb/grip/message"
)

// MakeAPILogMessage returns a structured message for logging an API call and
// its input.
func MakeAPILogMessage(op string, in interface{}) message.Fields {
	return message.Fields{
		"message": "GCP API call",
		"op":      op,
		"input":   in,
	}
}
