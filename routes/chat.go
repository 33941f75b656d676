package routes

import (
	"net/http"

	"hmo-chatbot-backend/internal/chat"
	"hmo-chatbot-backend/internal/index"
	"hmo-chatbot-backend/internal/retriever"
	"hmo-chatbot-backend/models"
	"hmo-chatbot-backend/utils"

	"github.com/gin-gonic/gin"
)

// retrievedChunk is the transport shape of one retrieval result.
type retrievedChunk struct {
	ChunkID    int                    `json:"chunk_id"`
	Text       string                 `json:"text"`
	SourceFile string                 `json:"source_file"`
	Category   models.ServiceCategory `json:"category"`
	Score      float64                `json:"score"`
}

// SetupChatRoutes wires the retrieval core to its HTTP surface: /chat for
// grounded answers, /retrieve for raw similarity search, /kb/stats for
// introspection.
func SetupChatRoutes(router *gin.Engine, orch *chat.Orchestrator, retr *retriever.Retriever, idx *index.Index) {
	router.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if err := req.UserInfo.Validate(); err != nil {
			utils.RespondWithBadRequest(c, "Invalid user profile", gin.H{"error": err.Error()})
			return
		}

		result := orch.Answer(c.Request.Context(), req.Message, req.UserInfo, req.History, req.Language)
		if result.Status == models.StatusError {
			utils.RespondWithBadGateway(c, result.Reason, "Failed to generate answer")
			return
		}

		c.JSON(http.StatusOK, result)
	})

	router.POST("/retrieve", func(c *gin.Context) {
		var req models.RetrieveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}
		if err := req.UserInfo.Validate(); err != nil {
			utils.RespondWithBadRequest(c, "Invalid user profile", gin.H{"error": err.Error()})
			return
		}

		k := req.K
		if k < 1 {
			k = 5
		}

		results, err := retr.Retrieve(c.Request.Context(), req.Query, req.UserInfo, k)
		if err != nil {
			utils.RespondWithBadGateway(c, "retrieval_failed", "Failed to retrieve chunks")
			return
		}

		chunks := make([]retrievedChunk, 0, len(results))
		for _, res := range results {
			chunks = append(chunks, retrievedChunk{
				ChunkID:    res.Chunk.ID,
				Text:       res.Chunk.Text,
				SourceFile: res.Chunk.SourceFile,
				Category:   res.Chunk.Category,
				Score:      res.Score,
			})
		}

		c.JSON(http.StatusOK, gin.H{"results": chunks})
	})

	router.GET("/kb/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, idx.Stats())
	})
}
