package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/helixask/common/llm"
	"basegraph.app/helixask/internal/httpapi/dto"
)

// moodHintResult is the schema-constrained shape asked of the model; it
// never reaches a caller directly, dto.MoodHintResponse does.
type moodHintResult struct {
	Mood       string  `json:"mood" jsonschema:"enum=mad,enum=upset,enum=shock,enum=question,enum=happy,enum=friend,enum=love,enum=none"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

var moodHintSchema = llm.GenerateSchema[moodHintResult]()

const moodHintSystemPrompt = `You read a short snippet of chat text and classify its mood as exactly
one of mad, upset, shock, question, happy, friend, love, or none if no
clear mood comes through. Answer only with the requested fields.`

// MoodHandler answers POST /mood-hint, a low-stakes console affordance that
// infers a one-word mood label from recent chat text for UI coloring; it
// never gates or blocks any pipeline decision.
type MoodHandler struct {
	LLM llm.Client
}

func NewMoodHandler(client llm.Client) *MoodHandler {
	return &MoodHandler{LLM: client}
}

func (h *MoodHandler) Hint(c *gin.Context) {
	var req dto.MoodHintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "execution_invalid_args", err.Error())
		return
	}

	if req.Text == "" {
		writeJSON(c, http.StatusOK, dto.MoodHintResponse{Mood: "none", Confidence: 0, Reason: "no text supplied", Source: "default"})
		return
	}

	if h.LLM == nil {
		writeJSON(c, http.StatusOK, dto.MoodHintResponse{Mood: "none", Confidence: 0, Reason: "mood hinting is not configured", Source: "default"})
		return
	}

	var result moodHintResult
	_, err := h.LLM.Chat(c.Request.Context(), llm.Request{
		SystemPrompt: moodHintSystemPrompt,
		UserPrompt:   req.Text + "\n\ncontext: " + req.Context,
		SchemaName:   "mood_hint",
		Schema:       moodHintSchema,
		MaxTokens:    200,
		Temperature:  llm.Temp(0.2),
	}, &result)
	if err != nil {
		writeJSON(c, http.StatusOK, dto.MoodHintResponse{Mood: "none", Confidence: 0, Reason: "mood model unavailable", Source: "fallback"})
		return
	}

	writeJSON(c, http.StatusOK, dto.MoodHintResponse{
		Mood:       result.Mood,
		Confidence: result.Confidence,
		Reason:     result.Reason,
		Source:     "model",
	})
}
