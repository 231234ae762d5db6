package party

import "time"

// Party is a registered participant: a client that funds jobs or a
// contractor that gets paid for them. SecretHash stores the bcrypt hash of
// the API secret issued at registration.
type Party struct {
	ID           string
	Name         string
	Role         string
	Jurisdiction string
	SecretHash   []byte
	CreatedAt    time.Time
}
