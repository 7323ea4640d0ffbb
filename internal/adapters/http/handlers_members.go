package web

import (
	"net/http"
	"time"

	"clubdash/internal/adapters/http/middleware"
	"clubdash/internal/application/listutil"
	"clubdash/internal/application/orchestrators"
	"clubdash/internal/application/projections"
	"clubdash/internal/domain/leaderboard"
)

// handlePartners handles GET /api/partners?limit=
func handlePartners(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	matches, err := projections.QueryGetPartnerMatches(r.Context(), projections.GetPartnerMatchesQuery{
		MemberID: callerID(r),
		Limit:    listutil.ParseInt(q, "limit", projections.DefaultPartnerLimit),
	}, projections.GetPartnerMatchesDeps{Members: stores.MemberStore})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]partnerJSON, 0, len(matches))
	for _, m := range matches {
		out = append(out, toPartnerJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleLeaderboard handles GET /api/leaderboard?metric=&limit=
func handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	q := r.URL.Query()
	metric := q.Get("metric")
	if metric == "" {
		metric = leaderboard.MetricSessions
	}

	result, err := projections.QueryGetLeaderboard(r.Context(), projections.GetLeaderboardQuery{
		Metric: metric,
		Limit:  listutil.ParseInt(q, "limit", 0),
	}, projections.GetLeaderboardDeps{
		Members:   stores.MemberStore,
		Snapshots: stores.LeaderboardStore,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardResponse(result))
}

// handleTakeSnapshot handles POST /api/leaderboard/snapshots (coach or admin).
func handleTakeSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req snapshotRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	snap, err := orchestrators.ExecuteTakeLeaderboardSnapshot(r.Context(), req.Metric, orchestrators.TakeSnapshotDeps{
		Members:    stores.MemberStore,
		Snapshots:  stores.LeaderboardStore,
		Now:        timeNow,
		GenerateID: generateID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshotResponse{
		ID:      snap.ID,
		Metric:  snap.Metric,
		TakenAt: snap.TakenAt,
		Ranked:  len(snap.Ranks),
	})
}

// handleDeadLetters handles GET /api/admin/outbox/dead?limit= (admin).
func handleDeadLetters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	entries, err := projections.QueryGetDeadLetters(r.Context(), listutil.ParseInt(r.URL.Query(), "limit", 0), stores.OutboxStore)
	if err != nil {
		internalError(w, err)
		return
	}

	type deadJSON struct {
		ID        string    `json:"id"`
		Kind      string    `json:"kind"`
		Attempts  int       `json:"attempts"`
		LastError string    `json:"last_error"`
		CreatedAt time.Time `json:"created_at"`
		Payload   string    `json:"payload"`
	}
	out := make([]deadJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, deadJSON{ID: e.ID, Kind: e.Kind, Attempts: e.Attempts, LastError: e.LastError, CreatedAt: e.CreatedAt, Payload: e.Payload})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePerf handles GET /api/admin/perf?minutes=&top= (admin).
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if perfCollector == nil {
		writeError(w, http.StatusNotFound, "performance collection is disabled")
		return
	}
	q := r.URL.Query()
	minutes := listutil.ParseInt(q, "minutes", 60)
	top := listutil.ParseInt(q, "top", 10)
	if minutes < 1 {
		minutes = 60
	}
	if top < 1 || top > 100 {
		top = 10
	}
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	id, _ := middleware.MemberFromContext(r.Context())
	snap := perfCollector.Snapshot(since, top)
	writeJSON(w, http.StatusOK, map[string]any{
		"since":        since,
		"requested_by": id.MemberID,
		"snapshot":     snap,
	})
}
