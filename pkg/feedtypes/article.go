// Package feedtypes provides the shared article types produced by feed adapters.
package feedtypes

// StatusOK is the status of a successful NewsResponse.
const StatusOK = "ok"

// Source identifies the site an article came from.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is one normalized headline. Adapters never mutate an Article after returning it.
type Article struct {
	Source               Source `json:"source"`
	Author               string `json:"author"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	URL                  string `json:"url"`
	URLToImage           string `json:"urlToImage"`
	PublishedAt          string `json:"publishedAt"`
	PublishedAtTimestamp int64  `json:"publishedAtTimestamp"`
	Content              string `json:"content"`
}

// NewsResponse is the uniform result of parsing one source, regardless of its dialect.
// Code and Message are only set when the upstream reported an error status.
type NewsResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Code         string    `json:"code,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// OK reports whether the response carries articles rather than an error payload.
func (r *NewsResponse) OK() bool {
	return r != nil && r.Status == StatusOK
}

// NewOKResponse wraps articles in a successful response.
func NewOKResponse(articles []Article) *NewsResponse {
	if articles == nil {
		articles = []Article{}
	}
	return &NewsResponse{
		Status:       StatusOK,
		TotalResults: len(articles),
		Articles:     articles,
	}
}
