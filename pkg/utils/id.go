package utils

import "github.com/google/uuid"

// GenerateConnectionID generates a unique connection ID. Connections are
// identified by server-assigned ids, announced in the connected event.
func GenerateConnectionID() string {
	return "conn_" + uuid.NewString()
}
