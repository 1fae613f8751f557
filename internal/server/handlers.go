package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/cloze/internal/dictionary"
	"github.com/abhisek/cloze/internal/exercise"
	"github.com/abhisek/cloze/internal/history"
	"github.com/abhisek/cloze/internal/llm"
	"github.com/abhisek/cloze/internal/logger"
)

const maxImportBytes = 8 << 20

type handlers struct {
	cloze      *exercise.Service
	history    *history.Service
	dictionary *dictionary.Service
	log        *logger.Logger
}

type generateRequest struct {
	Words string `json:"words"`

	// Save defaults to true.
	Save *bool `json:"save"`
}

type generateResponse struct {
	exercise.Result
	HistoryID string `json:"historyId,omitempty"`
}

// POST /api/cloze
func (h *handlers) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "request body must be JSON like {\"words\": \"...\"}")
		return
	}

	user := userID(c)
	ctx := llm.WithUser(c.Request.Context(), user)

	res := h.cloze.GenerateCloze(ctx, req.Words)
	if !res.Success {
		c.JSON(statusForKind(res.Kind), generateResponse{Result: res})
		return
	}

	resp := generateResponse{Result: res}
	if req.Save == nil || *req.Save {
		entry, err := h.history.Save(ctx, user, req.Words, res.Exercise)
		if err != nil {
			h.log.Warn("saving generated exercise failed", "user", user, "error", err)
		} else {
			resp.HistoryID = entry.ID
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GET /api/words/:word
func (h *handlers) lookup(c *gin.Context) {
	detail, err := h.dictionary.Lookup(c.Request.Context(), userID(c), c.Param("word"))
	switch {
	case errors.Is(err, dictionary.ErrEmptyWord):
		respondError(c, http.StatusBadRequest, "empty_word", err.Error())
	case errors.Is(err, dictionary.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", "no dictionary entry for that word")
	case err != nil:
		h.log.Warn("word lookup failed", "word", c.Param("word"), "error", err)
		respondError(c, http.StatusBadGateway, "lookup_failed", "dictionary lookup failed, please try again")
	default:
		c.JSON(http.StatusOK, detail)
	}
}

// GET /api/history?limit=
func (h *handlers) listHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.history.List(c.Request.Context(), userID(c), limit)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GET /api/history/:id
func (h *handlers) getHistory(c *gin.Context) {
	entry, err := h.history.Get(c.Request.Context(), userID(c), c.Param("id"))
	if h.historyError(c, err) {
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DELETE /api/history/:id
func (h *handlers) deleteHistory(c *gin.Context) {
	err := h.history.Delete(c.Request.Context(), userID(c), c.Param("id"))
	if h.historyError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/history
func (h *handlers) clearHistory(c *gin.Context) {
	n, err := h.history.Clear(c.Request.Context(), userID(c))
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type answersRequest struct {
	Answers map[string]string `json:"answers"`
}

// PUT /api/history/:id/answers
func (h *handlers) recordAnswers(c *gin.Context) {
	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "request body must be JSON like {\"answers\": {\"1\": \"word\"}}")
		return
	}

	answers := make(map[int]string, len(req.Answers))
	for key, a := range req.Answers {
		if n, ok := exercise.ParseBlank(key); ok {
			answers[n] = a
		}
	}

	score, err := h.history.RecordAnswers(c.Request.Context(), userID(c), c.Param("id"), answers)
	if h.historyError(c, err) {
		return
	}
	c.JSON(http.StatusOK, score)
}

// POST /api/history/import
func (h *handlers) importHistory(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "could not read request body")
		return
	}

	n, err := h.history.Import(c.Request.Context(), userID(c), data)
	var importErr *history.ImportError
	if errors.As(err, &importErr) {
		respondError(c, http.StatusBadRequest, "invalid_export", importErr.Error())
		return
	}
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}

// historyError writes the response for err and reports whether it did.
func (h *handlers) historyError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, history.ErrNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "history entry not found")
		return true
	}
	h.internalError(c, err)
	return true
}

func (h *handlers) internalError(c *gin.Context, err error) {
	h.log.Error("request failed", "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, "internal", "internal error")
}

// GET /healthcheck
func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
