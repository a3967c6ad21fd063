package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"server/internal/domain"
	"server/internal/generation"
	"server/internal/middleware"
	"server/internal/providers/image"
)

type generateRequest struct {
	Base64Image1 string `json:"base64Image1"`
	Base64Image2 string `json:"base64Image2,omitempty"`
	Prompt       string `json:"prompt"`
	MimeType1    string `json:"mimeType1,omitempty"`
	MimeType2    string `json:"mimeType2,omitempty"`
}

type generateResponse struct {
	ImageData          string `json:"imageData"`
	MimeType           string `json:"mimeType"`
	Remaining          int64  `json:"remaining"`
	RemainingCredits   int64  `json:"remainingCredits"`
	CreditUnit         int64  `json:"creditUnit"`
	BudgetRemainingKrw int64  `json:"budgetRemainingKrw"`
}

// Generate is the metered image edit. Admission runs before the provider
// call; ledgers are charged only after the provider returned an image.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}
	if strings.TrimSpace(req.Base64Image1) == "" || strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "BAD_REQUEST")
		return
	}

	images := []image.SourceImage{{Data: req.Base64Image1, MIME: defaultMIME(req.MimeType1)}}
	if req.Base64Image2 != "" {
		images = append(images, image.SourceImage{Data: req.Base64Image2, MIME: defaultMIME(req.MimeType2)})
	}

	email := middleware.EmailFromContext(r.Context())
	requestID := middleware.RequestIDFromContext(r.Context())

	result, err := a.Orchestrator.Generate(r.Context(), generation.Request{
		Email:          email,
		ClientIdentity: middleware.ClientIP(r),
		Prompt:         req.Prompt,
		Images:         images,
		RequestID:      requestID,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFreeLimitExceeded):
			a.error(w, http.StatusPaymentRequired, "FREE_LIMIT_EXCEEDED")
		case errors.Is(err, domain.ErrBudgetExceeded):
			a.error(w, http.StatusPaymentRequired, "BUDGET_EXCEEDED")
		case errors.Is(err, domain.ErrNotConfigured):
			a.Logger.Error().Str("request_id", requestID).Msg("generate called without provider key")
			a.error(w, http.StatusInternalServerError, "SERVER_MISCONFIGURED")
		case errors.Is(err, domain.ErrNoImageReturned):
			a.error(w, http.StatusInternalServerError, "NO_IMAGE_RETURNED")
		default:
			a.Logger.Error().Err(err).Str("request_id", requestID).Msg("generate failed")
			a.error(w, http.StatusInternalServerError, "INTERNAL_ERROR")
		}
		return
	}

	a.json(w, http.StatusOK, generateResponse{
		ImageData:          result.ImageData,
		MimeType:           result.MimeType,
		Remaining:          result.Remaining,
		// Echoes the post-commit remaining on both paths: the credit balance
		// when credits paid, the free count otherwise.
		RemainingCredits:   result.Remaining,
		CreditUnit:         result.CreditUnit,
		BudgetRemainingKrw: result.BudgetRemainingKrw,
	})
}

func defaultMIME(mime string) string {
	if mime == "" {
		return "image/png"
	}
	return mime
}
