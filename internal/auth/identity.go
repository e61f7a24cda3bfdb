package auth

// Identity is the resolved caller of a live session handshake: either a
// JWT-authenticated user or a guest admitted by a shared guest token.
type Identity struct {
	UserID  string
	IsGuest bool
}

// ResolveIdentity validates the handshake credentials. A JWT wins over
// a guest token when both are present; a non-empty guest token admits
// the caller as a guest.
func (v *JWTValidator) ResolveIdentity(token, guestToken string) (*Identity, error) {
	if token != "" {
		claims, err := v.Validate(token)
		if err != nil {
			return nil, err
		}
		return &Identity{UserID: claims.UserID}, nil
	}
	if guestToken != "" {
		return &Identity{UserID: "guest:" + guestToken, IsGuest: true}, nil
	}
	return nil, ErrInvalidToken
}
