package http

// HTTP header constants
const (
	HeaderContentType      = "Content-Type"
	HeaderContentLength    = "Content-Length"
	HeaderConnection       = "Connection"
	HeaderTransferEncoding = "Transfer-Encoding"
	HeaderSetCookie        = "Set-Cookie"
	HeaderLocation         = "Location"
	HeaderCacheControl     = "Cache-Control"
	HeaderUpgrade          = "Upgrade"
	HeaderHost             = "Host"
	HeaderUserAgent        = "User-Agent"
	HeaderAuthorization    = "Authorization"
	HeaderWWWAuthenticate  = "WWW-Authenticate"
)

// Version is the protocol version emitted on every response status line.
const Version = "HTTP/1.1"

// DefaultContentType is applied when neither the caller nor the response
// carries an explicit content type.
const DefaultContentType = "text/plain"
