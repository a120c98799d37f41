package auth

// Account roles carried by a resolved session.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
)

// Session is the opaque identity the core operates on. It is produced by a
// SessionResolver from a bearer token; the core never inspects credentials.
type Session struct {
	UserID     string
	Role       string
	ProviderID string // set only for provider sessions
}

// IsProvider reports whether the session belongs to an active provider account.
func (s Session) IsProvider() bool {
	return s.Role == RoleProvider && s.ProviderID != ""
}

// IsClient reports whether the session belongs to a client account.
func (s Session) IsClient() bool {
	return s.Role == RoleClient && s.UserID != ""
}

// SessionResolver turns a bearer token into a Session. Implementations must
// return an error for missing, expired or malformed tokens; the middleware
// maps every failure to an authorization error without detail.
type SessionResolver interface {
	Resolve(token string) (Session, error)
}
