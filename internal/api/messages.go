// Package api is the wire contract shared by the authkeeper server and its
// clients: request and response messages, the gRPC service description and
// the JSON codec the service is spoken over.
package api

type RegisterRequest struct {
	GivenName      string  `json:"given_name"`
	MiddleName     *string `json:"middle_name,omitempty"`
	LastName       string  `json:"last_name"`
	ContactNumber  string  `json:"contact_number"`
	ContactEmail   string  `json:"contact_email"`
	Username       string  `json:"username"`
	Password       string  `json:"password"`
	ProfilePicture string  `json:"profile_picture"`
}

type RegisterResponse struct {
	Status string `json:"status"`
}

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is returned by sign-in and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest is empty: the refresh token travels as a bearer credential.
type RefreshRequest struct{}

// LogoutRequest is empty: the access token travels as a bearer credential.
type LogoutRequest struct{}

type LogoutResponse struct {
	Revoked int64 `json:"revoked"`
}
