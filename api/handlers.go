package api

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/petalhealth/petal/pkg/eventstream"
	"github.com/petalhealth/petal/pkg/llm"
	"github.com/petalhealth/petal/pkg/prompt"
	"github.com/petalhealth/petal/pkg/retriever"
	"github.com/petalhealth/petal/pkg/utils"
	"github.com/petalhealth/petal/pkg/vector"
	"github.com/petalhealth/petal/pkg/worker"
)

// ChatSendRequest is the body of POST /chat/send.
type ChatSendRequest struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// ChatSendResponse is the reply to POST /chat/send.
type ChatSendResponse struct {
	Reply   string               `json:"reply"`
	Sources []retriever.Citation `json:"sources"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Token string `json:"token"`
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResult is a single retrieved passage.
type SearchResult struct {
	Score  float32 `json:"score"`
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Page   string  `json:"page,omitempty"`
	Title  string  `json:"title,omitempty"`
}

// SearchResponse is the reply to POST /search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// ReindexRequest is the body of POST /admin/reindex.
type ReindexRequest struct {
	Token   string `json:"token"`
	Rebuild bool   `json:"rebuild,omitempty"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// verify resolves a token to a user id, writing a 401 response on failure.
func (s *Server) verify(c *fiber.Ctx, token string) (string, bool) {
	userID, err := s.deps.Verifier.Verify(c.Context(), token)
	if err != nil {
		_ = c.Status(fiber.StatusUnauthorized).JSON(llm.ErrorResponse{Error: "unauthorized"})
		return "", false
	}
	return userID, true
}

// handleChatSend answers one chat message. The reply is returned immediately;
// summarization and history persistence happen on the worker pool.
func (s *Server) handleChatSend(c *fiber.Ctx) error {
	var req ChatSendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "message is required"})
	}

	userID, ok := s.verify(c, req.Token)
	if !ok {
		return nil
	}

	s.logger.Debug("chat request", "user_id", userID, "message", utils.Truncate(req.Message, 80))

	answer, err := s.deps.Engine.Answer(c.Context(), userID, req.Message, prompt.ModeChat)
	if err != nil {
		s.logger.Error("chat request failed", "user_id", userID, "error", err)
		if errors.Is(err, vector.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "retrieval backend unavailable"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to answer message"})
	}

	s.deps.Pool.Enqueue(worker.Job{
		UserID: userID,
		Query:  req.Message,
		Reply:  answer.Reply,
	})

	return c.JSON(ChatSendResponse{
		Reply:   answer.Reply,
		Sources: answer.Citations,
	})
}

// handleChatHistory returns the user's most recent turns, oldest-first.
// Query parameters:
//   - token (required): the caller's auth token
//   - limit (optional, default 50): maximum turns to return
func (s *Server) handleChatHistory(c *fiber.Ctx) error {
	userID, ok := s.verify(c, c.Query("token"))
	if !ok {
		return nil
	}

	limit := c.QueryInt("limit", 50)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "limit must be a positive integer"})
	}

	turns, err := s.deps.History.Recent(c.Context(), userID, limit)
	if err != nil {
		s.logger.Error("history lookup failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to load history"})
	}

	return c.JSON(fiber.Map{
		"turns": turns,
		"count": len(turns),
	})
}

// handleSearch runs a raw retrieval query without generation.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "query is required"})
	}

	if req.TopK < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "top_k must not be negative"})
	}

	if _, ok := s.verify(c, req.Token); !ok {
		return nil
	}

	scored, err := s.deps.Retriever.Retrieve(c.Context(), req.Query, uint64(req.TopK))
	if err != nil {
		s.logger.Error("search failed", "query", utils.Truncate(req.Query, 80), "error", err)
		if errors.Is(err, vector.ErrUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "retrieval backend unavailable"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "search failed"})
	}

	results := make([]SearchResult, 0, len(scored))
	for _, hit := range scored {
		results = append(results, SearchResult{
			Score:  hit.Score,
			Text:   hit.Passage.Text,
			Source: hit.Passage.Metadata.Source,
			Page:   hit.Passage.Metadata.Page,
			Title:  hit.Passage.Metadata.Title,
		})
	}

	return c.JSON(SearchResponse{
		Query:   req.Query,
		Results: results,
		Count:   len(results),
	})
}

// handleReportAnalyze accepts a multipart lab report upload and returns the
// structured extraction plus grounded guidance.
// Form fields:
//   - token (required): the caller's auth token
//   - report (required): the uploaded report file
func (s *Server) handleReportAnalyze(c *fiber.Ctx) error {
	userID, ok := s.verify(c, c.FormValue("token"))
	if !ok {
		return nil
	}

	file, err := c.FormFile("report")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "report file is required"})
	}

	dir, err := os.MkdirTemp("", "petal-report-*")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to stage report"})
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to stage report"})
	}

	result, err := s.deps.Reports.Run(c.Context(), userID, path)
	if err != nil {
		s.logger.Error("report analysis failed", "user_id", userID, "error", err)

		var malformed *llm.MalformedOutputError
		if errors.As(err, &malformed) {
			return c.Status(fiber.StatusBadGateway).JSON(llm.ErrorResponse{Error: "model returned unparseable extraction"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to analyze report"})
	}

	return c.JSON(result)
}

// handleReindex walks the configured corpus root and indexes it, optionally
// rebuilding the collection from scratch.
func (s *Server) handleReindex(c *fiber.Ctx) error {
	var req ReindexRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if _, ok := s.verify(c, req.Token); !ok {
		return nil
	}

	stats, err := s.deps.Retriever.IndexCorpus(c.Context(), s.config.CorpusRoot, req.Rebuild)
	if err != nil {
		s.logger.Error("reindex failed", "root", s.config.CorpusRoot, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "reindex failed"})
	}

	event := eventstream.NewCorpusEvent(s.config.CorpusRoot, stats.Documents, stats.Chunks, stats.Skipped, req.Rebuild)
	if err := s.deps.Events.PublishCorpusIndexed(c.Context(), event); err != nil {
		s.logger.Warn("failed to publish corpus event", "error", err)
	}

	return c.JSON(stats)
}
