package dao

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	spanFields = `id spanId traceId parentId name spanKind statusCode statusMessage
startTime endTime tokenCountPrompt tokenCountCompletion tokenCountTotal
input { value mimeType } output { value mimeType } exceptionMessage`

	spansQuery = `query SpansTableQuery($id: GlobalID!, $first: Int, $after: String) {
  node(id: $id) {
    ... on Project {
      spans(first: $first, after: $after, sort: {col: startTime, dir: desc}) {
        edges { cursor node { ` + spanFields + ` } }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

	examplesQuery = `query ExamplesTableQuery($id: GlobalID!, $first: Int, $after: String) {
  node(id: $id) {
    ... on Dataset {
      examples(first: $first, after: $after) {
        edges { cursor node { id createdAt input output metadata error } }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

	maxErrorBody = 512
)

type gqlQuery struct {
	text string
	path []string
}

var gqlQueries = map[string]gqlQuery{
	SpansResource:    {text: spansQuery, path: []string{"node", "spans"}},
	ExamplesResource: {text: examplesQuery, path: []string{"node", "examples"}},
}

// GraphQLError carries the errors array of a GraphQL response.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// GraphQLSource fetches connection pages from a GraphQL endpoint.
type GraphQLSource struct {
	endpoint string
	token    string
	client   *http.Client
	log      *zap.Logger
}

// GraphQLOption configures a GraphQLSource.
type GraphQLOption func(*GraphQLSource)

// WithToken sends a bearer token on every request.
func WithToken(token string) GraphQLOption {
	return func(s *GraphQLSource) {
		s.token = token
	}
}

// WithHTTPClient swaps the HTTP client.
func WithHTTPClient(c *http.Client) GraphQLOption {
	return func(s *GraphQLSource) {
		s.client = c
	}
}

// WithLogger sets the source logger.
func WithLogger(l *zap.Logger) GraphQLOption {
	return func(s *GraphQLSource) {
		s.log = l
	}
}

// NewGraphQLSource returns a source posting to endpoint.
func NewGraphQLSource(endpoint string, opts ...GraphQLOption) *GraphQLSource {
	s := GraphQLSource{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(&s)
	}

	return &s
}

// Fetch posts the connection query of rid and decodes the page.
func (s *GraphQLSource) Fetch(ctx context.Context, rid ResourceID, req PageRequest) (*Page, error) {
	q, ok := gqlQueries[rid.Resource]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, rid.Resource)
	}
	vars := map[string]any{"id": rid.Scope, "first": req.First}
	if req.After != "" {
		vars["after"] = req.After
	} else {
		vars["after"] = nil
	}

	data, err := s.post(ctx, gqlRequest{Query: q.text, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rid, err)
	}
	raw, err := walk(data, q.path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rid, err)
	}
	var page Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("fetch %s: decode page: %w", rid, err)
	}

	return &page, nil
}

func (s *GraphQLSource) post(ctx context.Context, body gqlRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	s.log.Debug("graphql request",
		zap.String("requestID", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		e := GraphQLError{Messages: make([]string, 0, len(out.Errors))}
		for _, m := range out.Errors {
			e.Messages = append(e.Messages, m.Message)
		}
		return nil, &e
	}

	return out.Data, nil
}

// walk descends into nested JSON objects along path.
func walk(raw json.RawMessage, path []string) (json.RawMessage, error) {
	for _, key := range path {
		if len(raw) == 0 || string(raw) == "null" {
			return nil, ErrNotFound
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		next, ok := obj[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", ErrNotFound, key)
		}
		raw = next
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrNotFound
	}

	return raw, nil
}
