package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// Basic and Bearer credentials.
const AuthorizationHeaderName = "authorization"

// Cookie names used by the HTTP API.
const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

// Error messages surfaced to clients.
const (
	MsgInvalidCredentials  = "INVALID_CREDENTIALS"
	MsgInvalidBasicToken   = "INVALID_BASIC_TOKEN"
	MsgInvalidBearerToken  = "INVALID_BEARER_TOKEN"
	MsgInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	MsgRefreshTokenExpired = "REFRESH_TOKEN_EXPIRED"
	MsgRefreshTokenReused  = "REFRESH_TOKEN_REUSED"
	MsgInvalidTokenClaims  = "INVALID_TOKEN_CLAIMS"
	MsgInvalidAccessToken  = "INVALID_ACCESS_TOKEN"
	MsgAccessTokenExpired  = "ACCESS_TOKEN_EXPIRED"

	MsgPasswordTooLong       = "PASSWORD_TOO_LONG"
	MsgInvalidProfilePicture = "INVALID_PROFILE_PICTURE"
	MsgInvalidRequestBody    = "INVALID_REQUEST_BODY"
)
