package ollama

import (
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

const defaultModel = "nomic-embed-text"

// GraphOllamaClient creates embeddings with a locally hosted Ollama server.
type GraphOllamaClient struct {
	embeddingModel string

	baseURL    *url.URL
	httpClient *http.Client

	Client *api.Client
}

// NewGraphOllamaClientParams contains configuration options for creating a new GraphOllamaClient.
type NewGraphOllamaClientParams struct {
	EmbeddingModel string

	BaseURL string
	ApiKey  string
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewGraphOllamaClient creates a new Ollama client. An empty BaseURL falls
// back to OLLAMA_HOST handling of the ollama api package.
func NewGraphOllamaClient(
	params NewGraphOllamaClientParams,
) (*GraphOllamaClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := http.DefaultClient
	if params.ApiKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + params.ApiKey,
				},
				rt: http.DefaultTransport,
			},
		}
	}

	var cli *api.Client
	if u != nil {
		cli = api.NewClient(u, httpClient)
	} else {
		cli, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	model := params.EmbeddingModel
	if model == "" {
		model = defaultModel
	}

	return &GraphOllamaClient{
		embeddingModel: model,
		baseURL:        u,
		httpClient:     httpClient,
		Client:         cli,
	}, nil
}

func (c *GraphOllamaClient) Model() string {
	return c.embeddingModel
}
