package itinerary

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"terrefvg/internal/directory"
	"terrefvg/internal/logging"
	"terrefvg/internal/usage"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Generator is the slice of the genai Models service the client needs.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string // overrides the Gemini endpoint, mostly for tests
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues itinerary and travel-advice requests. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	gen         Generator
	model       string
	timeout     time.Duration
	dir         *directory.Directory
	catalogJSON string
}

// NewClient builds a Client over the Gemini API. An empty API key is not an
// error: the resulting client answers every call with the missing
// credential fallback and never touches the network.
func NewClient(ctx context.Context, cfg Config, dir *directory.Directory) (*Client, error) {
	c, err := newClient(nil, cfg.Model, cfg.Timeout, dir)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		logging.APIWarn("no Gemini API key configured; concierge disabled")
		return c, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	c.gen = gc.Models
	logging.API("gemini client ready (model %s)", c.model)
	return c, nil
}

// NewWithGenerator builds a Client over any Generator. A nil gen behaves
// like a missing credential.
func NewWithGenerator(gen Generator, model string, dir *directory.Directory) (*Client, error) {
	return newClient(gen, model, 0, dir)
}

func newClient(gen Generator, model string, timeout time.Duration, dir *directory.Directory) (*Client, error) {
	if dir == nil {
		return nil, fmt.Errorf("itinerary client requires a directory")
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	catalogJSON, err := projectCatalog(dir.All())
	if err != nil {
		return nil, err
	}
	return &Client{
		gen:         gen,
		model:       model,
		timeout:     timeout,
		dir:         dir,
		catalogJSON: catalogJSON,
	}, nil
}

// HasCredential reports whether calls can reach the backend.
func (c *Client) HasCredential() bool { return c.gen != nil }

// Model returns the model name used for requests.
func (c *Client) Model() string { return c.model }

func (c *Client) itineraryConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ResponseSchema(),
	}
}

// SynthesizeItinerary asks the backend for an itinerary matching request.
// Step farm ids are not checked against the catalog, and the step count is
// not capped: the model is only asked for at most MaxStops stops.
func (c *Client) SynthesizeItinerary(ctx context.Context, request string) Result {
	request = strings.TrimSpace(request)
	if request == "" {
		return failed(FailureEmptyRequest)
	}
	if c.gen == nil {
		logging.APIWarn("itinerary requested without API key")
		return failed(FailureMissingCredential)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryAPI, "SynthesizeItinerary")
	resp, err := c.gen.GenerateContent(ctx, c.model,
		genai.Text(itineraryPrompt(c.catalogJSON, request)),
		c.itineraryConfig())
	timer.StopWithThreshold(20 * time.Second)
	if err != nil {
		logging.APIError("itinerary generation failed: %v", err)
		return failed(FailureTransport)
	}
	c.recordUsage(ctx, usage.OpItinerary, resp)

	text := responseText(resp)
	if text == "" {
		logging.APIWarn("itinerary response was empty")
		return failed(FailureEmptyResponse)
	}

	it, err := parseItinerary(text)
	if err != nil {
		logging.APIWarn("discarding itinerary response: %v", err)
		return failed(FailureMalformedResponse)
	}
	if len(it.Steps) > MaxStops {
		logging.APIDebug("itinerary has %d steps, more than the %d requested", len(it.Steps), MaxStops)
	}
	logging.API("itinerary %q with %d steps", it.Title, len(it.Steps))
	return succeeded(it)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return strings.TrimSpace(resp.Text())
}

// recordUsage adds the token counts of resp to the tracker carried by ctx,
// if any.
func (c *Client) recordUsage(ctx context.Context, op string, resp *genai.GenerateContentResponse) {
	t := usage.FromContext(ctx)
	if t == nil || resp == nil || resp.UsageMetadata == nil {
		return
	}
	md := resp.UsageMetadata
	t.Track(c.model, op, int(md.PromptTokenCount), int(md.CandidatesTokenCount))
}
