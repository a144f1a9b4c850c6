// Package server exposes the matching engine over HTTP using gin.
//
// Routes:
//
//	POST /match   {"startup_description": "..."}              -> {"matches": [...]}
//	POST /email   {"startup_description", "signal", "match_score"} -> outreach draft
//	GET  /health                                               -> {"status": "ok", "signals": N}
//
// Failures use a single envelope:
//
//	{"error": {"code": "matching_unavailable", "message": "...", "request_id": "..."}}
//
// Invalid input maps to 400, provider failures and an unloaded corpus to 503,
// anything else to 500.
package server
