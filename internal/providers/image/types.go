package image

import "context"

// SourceImage is an input image handed to the editor, base64-encoded as it
// arrives on the wire.
type SourceImage struct {
	Data string
	MIME string
}

// EditRequest is the normalized request passed to any image editor.
type EditRequest struct {
	Instruction string
	Images      []SourceImage
	RequestID   string
}

// Result is the edited image returned by a provider, base64-encoded.
type Result struct {
	Data string
	MIME string
}

// Editor is the contract implemented by all image providers.
type Editor interface {
	Edit(ctx context.Context, req EditRequest) (*Result, error)
}
