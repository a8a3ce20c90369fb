package domain

type ProfileName string

// Profile describes one community account the client syncs against.
type Profile struct {
	Name        ProfileName
	BaseURL     string
	UserID      PeerID
	DisplayName string
	// TokenRef points to the secret-store entry holding the bearer token.
	TokenRef string
}

func (p Profile) HasSession() bool {
	return p.TokenRef != ""
}
