package event

const SessionLinkedDestination string = "auth_session_linked"

type SessionLinkedMessage struct {
	IdentityID    string `json:"identity_id"`
	ProfileID     int64  `json:"profile_id,string"`
	Phone         string `json:"phone"`
	ProfileLinked bool   `json:"profile_linked"`
	LinkedAt      int64  `json:"linked_at"`
}
