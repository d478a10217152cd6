// Package linguistic implements the optional Portuguese annotation pipeline
// (POS, lemma, dependency parse) over HTTP, generalized from a CoreNLP-style
// annotator-string model to the three annotations the feature extractor
// needs.
package linguistic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/netest/netest-core/internal/core/ports/driven"
)

// Annotator identifies one stage of the annotation pipeline requested from
// the server, mirroring the annotator-string convention of Stanford CoreNLP.
type Annotator string

const (
	AnnotatorTokenize Annotator = "tokenize"
	AnnotatorSSplit   Annotator = "ssplit"
	AnnotatorPOS      Annotator = "pos"
	AnnotatorLemma    Annotator = "lemma"
	AnnotatorDepparse Annotator = "depparse"
)

// DefaultAnnotators is the pipeline the Feature & Span Extractor needs:
// tokenization and sentence splitting are implicit prerequisites for pos,
// lemma and depparse.
var DefaultAnnotators = []Annotator{
	AnnotatorTokenize, AnnotatorSSplit, AnnotatorPOS, AnnotatorLemma, AnnotatorDepparse,
}

// HTTPClient implements LinguisticPipeline against an HTTP annotation
// server (e.g. a CoreNLP-compatible server running a Portuguese model, or a
// bespoke annotator service exposing the same contract).
type HTTPClient struct {
	endpoint   string
	annotators []Annotator
	client     *http.Client
}

var _ driven.LinguisticPipeline = (*HTTPClient)(nil)

// NewHTTPClient creates a client targeting endpoint, requesting the given
// comma-joined annotator list (falls back to DefaultAnnotators when empty).
func NewHTTPClient(endpoint, annotatorsCSV string, timeout time.Duration) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("linguistic pipeline endpoint is required")
	}

	var annotators []Annotator
	if annotatorsCSV == "" {
		annotators = DefaultAnnotators
	} else {
		for _, a := range strings.Split(annotatorsCSV, ",") {
			a = strings.TrimSpace(a)
			if a != "" {
				annotators = append(annotators, Annotator(a))
			}
		}
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		annotators: annotators,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// annotateResponse is the wire shape returned by the annotation server: one
// flat token list in reading order, already resolved across sentences.
type annotateResponse struct {
	Tokens []struct {
		Text       string `json:"text"`
		Lemma      string `json:"lemma"`
		POS        string `json:"pos"`
		Dependency string `json:"dep"`
		HeadIndex  int    `json:"head"`
		CharStart  int    `json:"char_start"`
		CharEnd    int    `json:"char_end"`
		IsPassive  bool   `json:"is_passive"`
	} `json:"tokens"`
	Error string `json:"error,omitempty"`
}

// Annotate runs the configured annotator pipeline over text.
func (c *HTTPClient) Annotate(ctx context.Context, text string) ([]driven.TokenAnnotation, error) {
	annotatorStrs := make([]string, len(c.annotators))
	for i, a := range c.annotators {
		annotatorStrs[i] = string(a)
	}

	query := url.Values{}
	query.Set("annotators", strings.Join(annotatorStrs, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/annotate?"+query.Encode(), bytes.NewBufferString(text))
	if err != nil {
		return nil, fmt.Errorf("build annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("annotate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read annotate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("annotation server returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed annotateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse annotate response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("annotation server error: %s", parsed.Error)
	}

	out := make([]driven.TokenAnnotation, len(parsed.Tokens))
	for i, t := range parsed.Tokens {
		out[i] = driven.TokenAnnotation{
			Text:       t.Text,
			Lemma:      t.Lemma,
			POS:        t.POS,
			Dependency: t.Dependency,
			HeadIndex:  t.HeadIndex,
			CharStart:  t.CharStart,
			CharEnd:    t.CharEnd,
			IsPassive:  t.IsPassive,
		}
	}
	return out, nil
}

// Ping verifies the annotation server is reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/ping", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("annotation server ping returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases idle connections held by the underlying HTTP client.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
