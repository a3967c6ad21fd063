package image

import (
	"context"
	"errors"
	"fmt"

	"server/internal/domain"
	"server/internal/providers/genai"
)

// GeminiEditor adapts the Gemini client to the Editor contract.
type GeminiEditor struct {
	client *genai.Client
}

func NewGeminiEditor(client *genai.Client) *GeminiEditor {
	return &GeminiEditor{client: client}
}

func (g *GeminiEditor) Edit(ctx context.Context, req EditRequest) (*Result, error) {
	images := make([]genai.InlineImage, len(req.Images))
	for i, img := range req.Images {
		mime := img.MIME
		if mime == "" {
			mime = "image/png"
		}
		images[i] = genai.InlineImage{MIMEType: mime, Data: img.Data}
	}

	edited, err := g.client.EditImage(ctx, genai.EditRequest{
		Instruction: req.Instruction,
		Images:      images,
		RequestID:   req.RequestID,
	})
	switch {
	case errors.Is(err, genai.ErrNotConfigured):
		return nil, domain.ErrNotConfigured
	case errors.Is(err, genai.ErrNoImage):
		return nil, domain.ErrNoImageReturned
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	mime := edited.MIMEType
	if mime == "" && len(req.Images) > 0 {
		mime = req.Images[0].MIME
	}
	if mime == "" {
		mime = "image/png"
	}
	return &Result{Data: edited.Data, MIME: mime}, nil
}

var _ Editor = (*GeminiEditor)(nil)
