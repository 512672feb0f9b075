package itinerary

import (
	"context"
	"time"

	"google.golang.org/genai"

	"terrefvg/internal/geo"
	"terrefvg/internal/logging"
	"terrefvg/internal/usage"
)

// Fallback texts for travel advice.
const (
	DestinationNotFoundText = "Impossibile trovare le informazioni sulla destinazione."
	NoRouteText             = "Non sono riuscito a calcolare il percorso."
	AdviceFailedText        = "Errore durante il calcolo dei consigli di viaggio."
)

// Citation is a grounding source. Either field may be empty.
type Citation struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// Advice is short driving guidance plus optional grounding citations.
type Advice struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

func (c *Client) adviceConfig(origin geo.LatLng) *genai.GenerateContentConfig {
	lat, lng := origin.Lat, origin.Lng
	// Grounding tools and a JSON response schema cannot be combined.
	return &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
		ToolConfig: &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng:       &genai.LatLng{Latitude: &lat, Longitude: &lng},
				LanguageCode: "it",
			},
		},
	}
}

// TravelAdvice asks for short directions from origin to the farm, grounded
// in Google Maps. Unknown farms are answered locally. Without a credential
// every call gets the missing credential text, known farm or not.
func (c *Client) TravelAdvice(ctx context.Context, origin geo.LatLng, farmID string) Advice {
	if c.gen == nil {
		return Advice{Text: MissingCredentialText}
	}
	farm, ok := c.dir.Lookup(farmID)
	if !ok {
		logging.APIWarn("travel advice for unknown farm %q", farmID)
		return Advice{Text: DestinationNotFoundText}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryAPI, "TravelAdvice")
	resp, err := c.gen.GenerateContent(ctx, c.model,
		genai.Text(advicePrompt(origin, farm)),
		c.adviceConfig(origin))
	timer.StopWithThreshold(20 * time.Second)
	if err != nil {
		logging.APIError("travel advice failed: %v", err)
		return Advice{Text: AdviceFailedText}
	}
	c.recordUsage(ctx, usage.OpAdvice, resp)

	advice := Advice{Text: responseText(resp), Citations: citations(resp)}
	if advice.Text == "" {
		advice.Text = NoRouteText
	}
	logging.API("travel advice to %s: %d citations", farm.ID, len(advice.Citations))
	return advice
}

// citations collects the grounding chunks of the first candidate. Chunks
// carrying neither a title nor a URI are dropped, as are repeats.
func citations(resp *genai.GenerateContentResponse) []Citation {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var out []Citation
	seen := make(map[Citation]bool)
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil {
			continue
		}
		var c Citation
		switch {
		case chunk.Maps != nil:
			c = Citation{Title: chunk.Maps.Title, URI: chunk.Maps.URI}
		case chunk.Web != nil:
			c = Citation{Title: chunk.Web.Title, URI: chunk.Web.URI}
		default:
			continue
		}
		if (c.Title == "" && c.URI == "") || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
