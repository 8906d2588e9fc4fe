package dto

// GrammarCheckRequest proxies a text to the grammar-checking upstream.
type GrammarCheckRequest struct {
	Text     string `json:"text" validate:"required"`
	Language string `json:"language"`
}
