package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/dealflow/core"
)

// MatchRequest is the body of POST /match.
type MatchRequest struct {
	StartupDescription string `json:"startup_description"`
}

// EmailRequest is the body of POST /email. MatchScore uses the same
// 0 to 1 scale as the scores returned by /match.
type EmailRequest struct {
	StartupDescription string      `json:"startup_description"`
	Signal             core.Signal `json:"signal"`
	MatchScore         float64     `json:"match_score"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Signals int    `json:"signals"`
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}
	if s.corpus != nil {
		if !s.corpus.Loaded() {
			resp.Status = "loading"
		}
		resp.Signals = s.corpus.Len()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMatch(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidInput, "request body must be a JSON object with startup_description")
		return
	}

	resp, err := s.matcher.Match(c.Request.Context(), req.StartupDescription)
	if err != nil {
		s.fail(c, "match", err)
		return
	}
	if resp.Matches == nil {
		resp.Matches = []core.MatchResult{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEmail(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidInput, "request body must be a JSON object with startup_description, signal and match_score")
		return
	}

	draft, err := s.matcher.DraftOutreach(c.Request.Context(), req.StartupDescription, req.Signal, req.MatchScore)
	if err != nil {
		s.fail(c, "email", err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "request_id", RequestIDFrom(c), "code", code, "err", err)
	}
	writeError(c, status, code, message)
}
