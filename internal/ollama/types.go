package ollama

import "time"

const (
	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 180 * time.Second

	probeTimeout = 20 * time.Second
	pingTimeout  = 2 * time.Second
)

// Mode identifies which inference endpoint a model supports.
type Mode string

const (
	// ModeChat is the structured /api/chat endpoint.
	ModeChat Mode = "chat"
	// ModeGenerate is the plain /api/generate completion endpoint.
	ModeGenerate Mode = "generate"
)

// Config is Ollama API client configuration.
type Config struct {
	BaseURL     string
	Temperature float64
	NumPredict  int
	Timeout     time.Duration
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  options       `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

type pullProgress struct {
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
}
