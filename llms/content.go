package llms

type ContentResponse struct {
	Choices []*ContentChoice
}

type ContentChoice struct {
	Content        string
	StopReason     string
	GenerationInfo map[string]any
}

// FirstContent returns the content of the first choice, or ErrEmptyResponse.
func (r *ContentResponse) FirstContent() (string, error) {
	if r == nil || len(r.Choices) == 0 || r.Choices[0] == nil {
		return "", ErrEmptyResponse
	}
	return r.Choices[0].Content, nil
}
