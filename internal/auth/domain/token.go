package domain

// TokenPair is what a successful login or refresh returns: two independently
// signed, independently expiring bearer strings. Pairs are never persisted;
// the access token is stateless-verifiable and only the refresh token's hash
// lands on the user row.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"`           // access token lifetime, seconds
}

// OAuthProfile is the already-verified identity a provider callback hands to
// the upsert-login flow. The core trusts the email as verified by the
// provider; talking to providers is the boundary layer's problem.
type OAuthProfile struct {
	Provider   string // e.g. "google"; recorded, not interpreted
	ExternalID string // provider-scoped stable user id
	Email      string
	Name       string
}
