package httpdto

type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

type EditMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

type PreviewRequest struct {
	URL string `json:"url" binding:"required"`
}
