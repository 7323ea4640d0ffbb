package middleware

import (
	"context"
	"net/http"
	"strings"
)

// Headers set by the upstream authentication proxy.
const (
	HeaderMemberID   = "X-Member-ID"
	HeaderMemberRole = "X-Member-Role"
)

// Roles recognised in HeaderMemberRole.
const (
	RoleMember = "member"
	RoleCoach  = "coach"
	RoleAdmin  = "admin"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the caller as asserted by the authentication proxy.
type Identity struct {
	MemberID string
	Role     string
}

// IsStaff reports whether the caller may act for other members.
func (i Identity) IsStaff() bool {
	return i.Role == RoleCoach || i.Role == RoleAdmin
}

// Identify reads the caller identity headers into the request context. It
// does not block anonymous requests; use RequireMember or RequireRole.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := identityFromHeaders(r); ok {
			r = r.WithContext(ContextWithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// identityFromHeaders parses the proxy headers. A missing role means member.
func identityFromHeaders(r *http.Request) (Identity, bool) {
	memberID := strings.TrimSpace(r.Header.Get(HeaderMemberID))
	if memberID == "" {
		return Identity{}, false
	}
	role := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderMemberRole)))
	if role == "" {
		role = RoleMember
	}
	return Identity{MemberID: memberID, Role: role}, true
}

// RequireMember blocks anonymous requests.
func RequireMember(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := MemberFromContext(r.Context()); !ok {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// RequireRole blocks requests from callers without one of roles.
func RequireRole(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := MemberFromContext(r.Context())
		if !ok {
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		if !allowed[id.Role] {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// MemberFromContext extracts the caller identity.
func MemberFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// ContextWithIdentity returns a context carrying id.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}
