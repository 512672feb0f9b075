package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genai"
)

// ResponseSchema is the strict output schema sent with itinerary requests.
func ResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "Titolo accattivante dell'itinerario",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "Breve descrizione generale dell'esperienza",
			},
			"steps": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"farmId": {
							Type:        genai.TypeString,
							Description: "ID dell'azienda corrispondente",
						},
						"reason": {
							Type:        genai.TypeString,
							Description: "Motivo per cui visitare questa tappa specifico per l'utente",
						},
					},
					Required:         []string{"farmId", "reason"},
					PropertyOrdering: []string{"farmId", "reason"},
				},
			},
		},
		Required:         []string{"title", "description", "steps"},
		PropertyOrdering: []string{"title", "description", "steps"},
	}
}

// payload mirrors ResponseSchema with pointer fields so that a missing
// property can be told apart from an empty one.
type payload struct {
	Title       *string       `json:"title" validate:"required"`
	Description *string       `json:"description" validate:"required"`
	Steps       []payloadStep `json:"steps" validate:"required,dive"`
}

type payloadStep struct {
	FarmID *string `json:"farmId" validate:"required"`
	Reason *string `json:"reason" validate:"required"`
}

var validate = validator.New()

// parseItinerary decodes a backend response into an Itinerary. Anything
// that is not a schema-conforming object is rejected as a whole.
func parseItinerary(text string) (*Itinerary, error) {
	var p payload
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid itinerary JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("trailing data after itinerary JSON")
	}
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("itinerary does not match schema: %w", err)
	}

	it := &Itinerary{
		Title:       *p.Title,
		Description: *p.Description,
		Steps:       make([]Step, len(p.Steps)),
	}
	for i, s := range p.Steps {
		it.Steps[i] = Step{FarmID: *s.FarmID, Reason: *s.Reason}
	}
	return it, nil
}
