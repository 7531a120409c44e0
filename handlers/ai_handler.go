package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ruchit2005/JustiX-AI-Model/models"
	"github.com/ruchit2005/JustiX-AI-Model/service"
	"github.com/ruchit2005/JustiX-AI-Model/storage"
)

// AIHandler handles HTTP requests for the simulation engine
type AIHandler struct {
	knowledge    *service.KnowledgeService
	orchestrator *service.OrchestratorService
	analyzer     *service.AnalyzerService
	archive      storage.Archive
	logger       *logrus.Logger
}

// NewAIHandler creates a new AI handler. The archive is optional; when nil
// the raw documents are simply not retained.
func NewAIHandler(knowledge *service.KnowledgeService, orchestrator *service.OrchestratorService, analyzer *service.AnalyzerService, archive storage.Archive, logger *logrus.Logger) *AIHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &AIHandler{
		knowledge:    knowledge,
		orchestrator: orchestrator,
		analyzer:     analyzer,
		archive:      archive,
		logger:       logger,
	}
}

// Health handles GET / and GET /health
func (h *AIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "JustiX AI Engine",
		"status":  "running",
		"version": "1.0.0",
	})
}

// InitLegalRequest represents the request body for initializing the legal
// knowledge base
type InitLegalRequest struct {
	LegalText      string `json:"legal_text" binding:"required"`
	CollectionName string `json:"collection_name"`
}

// InitLegalLaws handles POST /api/ai/init_legal_laws
func (h *AIHandler) InitLegalLaws(c *gin.Context) {
	var req InitLegalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	collection := req.CollectionName
	if collection == "" {
		collection = models.DefaultLegalCollection
	}

	count, err := h.knowledge.InitializeLegal(c.Request.Context(), collection, req.LegalText)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INIT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	h.archiveDocument(c, models.CollectionKey{Partition: models.PartitionLegal, ID: collection}, req.LegalText)

	c.JSON(http.StatusOK, gin.H{
		"message":          "Legal knowledge base initialized",
		"collection_name":  collection,
		"chunks_processed": count,
	})
}

// InitCaseRequest represents the request body for initializing a case
type InitCaseRequest struct {
	CaseID  string `json:"case_id" binding:"required"`
	PDFText string `json:"pdf_text" binding:"required"`
}

// InitCase handles POST /api/ai/init_case
func (h *AIHandler) InitCase(c *gin.Context) {
	var req InitCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	summary, err := h.knowledge.InitializeCase(c.Request.Context(), req.CaseID, req.PDFText)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INIT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	h.archiveDocument(c, models.CollectionKey{Partition: models.PartitionCase, ID: req.CaseID}, req.PDFText)

	c.JSON(http.StatusOK, gin.H{
		"message": "Case initialized successfully",
		"summary": summary,
	})
}

// ReinitCaseRequest represents the request body for rebuilding a case from
// its archived document
type ReinitCaseRequest struct {
	CaseID string `json:"case_id" binding:"required"`
}

// ReinitCase handles POST /api/ai/reinit_case. It rebuilds a case
// collection from the archived source document, restoring vector state
// after a redeploy without asking the caller to resend the file.
func (h *AIHandler) ReinitCase(c *gin.Context) {
	var req ReinitCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if h.archive == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ARCHIVE_UNAVAILABLE",
				"message": "Document archive is not configured",
			},
		})
		return
	}

	key := models.CollectionKey{Partition: models.PartitionCase, ID: req.CaseID}
	doc, err := h.archive.Retrieve(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOCUMENT_NOT_FOUND",
				"message": err.Error(),
			},
		})
		return
	}
	defer doc.Close()

	text, err := io.ReadAll(doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ARCHIVE_READ_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	summary, err := h.knowledge.InitializeCase(c.Request.Context(), req.CaseID, string(text))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INIT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Case reinitialized from archive",
		"summary": summary,
	})
}

// TranscriptEntry accepts both transcript shapes the clients send: the
// turn-style {role, content} and the legacy chat-style {speaker, text}.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// normalizeTranscript maps wire entries onto conversation turns. Any
// speaker other than the user becomes an assistant turn.
func normalizeTranscript(entries []TranscriptEntry) []models.ConversationTurn {
	turns := make([]models.ConversationTurn, 0, len(entries))
	for _, e := range entries {
		label := e.Role
		if label == "" {
			label = e.Speaker
		}
		content := e.Content
		if content == "" {
			content = e.Text
		}
		if label == "" && content == "" {
			continue
		}

		role := models.TurnRoleAssistant
		if strings.EqualFold(label, "user") {
			role = models.TurnRoleUser
		}
		turns = append(turns, models.ConversationTurn{Role: role, Content: content})
	}
	return turns
}

// TurnRequest represents the request body for a debate turn
type TurnRequest struct {
	CaseID        string            `json:"case_id" binding:"required"`
	UserStatement string            `json:"user_statement" binding:"required"`
	TurnNumber    int               `json:"turn_number"`
	History       []TranscriptEntry `json:"history"`
}

// Turn handles POST /api/ai/turn. A turn never returns a server error:
// pipeline failures surface as a degraded response with HTTP 200.
func (h *AIHandler) Turn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	outcome := h.orchestrator.ProcessTurn(c.Request.Context(), req.CaseID, req.UserStatement, normalizeTranscript(req.History), req.TurnNumber)
	if outcome.Degraded {
		h.logger.WithFields(logrus.Fields{
			"case_id": req.CaseID,
			"reason":  outcome.Reason,
		}).Warn("Turn degraded")
	}

	resp := outcome.Response
	c.JSON(http.StatusOK, gin.H{
		"agent_role":         resp.Role.WireName(),
		"agent_response":     resp.ReplyText,
		"case_context_used":  resp.CaseContextUsed,
		"legal_context_used": resp.LegalContextUsed,
		"errors_detected":    resp.ViolationDetected,
	})
}

// ChatRequest represents the legacy conversational request body
type ChatRequest struct {
	CaseID   string            `json:"case_id" binding:"required"`
	UserText string            `json:"user_text" binding:"required"`
	History  []TranscriptEntry `json:"history"`
}

// Chat handles POST /api/ai/chat, the legacy conversational surface. It
// runs the same turn pipeline and reshapes the reply.
func (h *AIHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	history := normalizeTranscript(req.History)
	outcome := h.orchestrator.ProcessTurn(c.Request.Context(), req.CaseID, req.UserText, history, len(history)+1)

	resp := outcome.Response
	c.JSON(http.StatusOK, gin.H{
		"speaker":    resp.Role.Speaker(),
		"reply_text": resp.ReplyText,
		"emotion":    service.Emotion(resp.Role, resp.ReplyText),
	})
}

// AnalyzeRequest represents the request body for transcript analysis
type AnalyzeRequest struct {
	Transcript []TranscriptEntry `json:"transcript" binding:"required"`
}

// Analyze handles POST /api/ai/analyze
func (h *AIHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	report, err := h.analyzer.Analyze(c.Request.Context(), normalizeTranscript(req.Transcript))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"score":    report.Score,
		"feedback": report.Feedback,
		"summary":  report.Summary,
	})
}

// archiveDocument retains the raw document best effort. Archive failures
// never fail the request that ingested the document.
func (h *AIHandler) archiveDocument(c *gin.Context, key models.CollectionKey, text string) {
	if h.archive == nil {
		return
	}
	if _, err := h.archive.Store(c.Request.Context(), key, text); err != nil {
		h.logger.WithError(err).WithField("key", key.String()).Warn("Document archive failed")
	}
}
