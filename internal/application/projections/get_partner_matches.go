package projections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	memberStore "clubdash/internal/adapters/storage/member"
	"clubdash/internal/domain/member"
)

// ErrMemberNotFound is returned when the requesting member has no profile.
var ErrMemberNotFound = errors.New("member not found")

// DefaultPartnerLimit caps recommendations when no limit is given.
const DefaultPartnerLimit = 5

// GetPartnerMatchesQuery carries query parameters.
type GetPartnerMatchesQuery struct {
	MemberID string
	Limit    int
}

// GetPartnerMatchesDeps holds dependencies for GetPartnerMatches.
type GetPartnerMatchesDeps struct {
	Members MemberStore
}

// QueryGetPartnerMatches scores every other active member against MemberID.
// POST: at most Limit matches, best first, ties in member list order
func QueryGetPartnerMatches(ctx context.Context, query GetPartnerMatchesQuery, deps GetPartnerMatchesDeps) ([]member.Match, error) {
	self, err := deps.Members.GetByID(ctx, query.MemberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load member: %w", err)
	}
	candidates, err := deps.Members.List(ctx, memberStore.ListFilter{Status: member.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultPartnerLimit
	}
	return member.Recommend(self, candidates, limit), nil
}
