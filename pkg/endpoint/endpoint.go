package endpoint

const (
	DefaultBaseURL = "https://api.noroff.dev/api/v1"

	PostsPath    = "/social/posts"
	LoginPath    = "/social/auth/login"
	RegisterPath = "/social/auth/register"

	AuthorQueryParam = "_author"
)

const (
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
	AcceptHeader        = "Accept"
	RequestIDHeader     = "X-Request-ID"
	APIKeyHeader        = "X-Noroff-API-Key"

	BearerPrefix    = "Bearer "
	JSONContentType = "application/json"
)

// AccessTokenKey is the name the session token is stored under.
const AccessTokenKey = "accessToken"
