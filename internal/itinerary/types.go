// Package itinerary talks to the Gemini API on behalf of the concierge. It
// turns a free-text request plus the farm catalog into a structured visit
// itinerary, and a position plus a destination farm into short grounded
// driving advice. Neither operation ever returns a Go error: every failure
// is folded into a Result or a fallback Advice text.
package itinerary

// MaxStops is how many stops the concierge is asked to plan.
const MaxStops = 3

// Step is one stop of an itinerary.
type Step struct {
	FarmID string `json:"farmId"`
	Reason string `json:"reason"`
}

// Itinerary is a generated, ordered sequence of farm visits.
type Itinerary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Steps       []Step `json:"steps"`
}

// FarmIDs returns the step farm ids in order. This is the map highlight set.
func (it *Itinerary) FarmIDs() []string {
	if it == nil {
		return nil
	}
	ids := make([]string, len(it.Steps))
	for i, s := range it.Steps {
		ids[i] = s.FarmID
	}
	return ids
}

// Truncated returns a copy keeping at most n steps. n <= 0 keeps all.
func (it Itinerary) Truncated(n int) Itinerary {
	out := it
	if n > 0 && len(it.Steps) > n {
		out.Steps = append([]Step(nil), it.Steps[:n]...)
	}
	return out
}

// FailureReason classifies why no itinerary was produced.
type FailureReason string

const (
	FailureNone              FailureReason = ""
	FailureEmptyRequest      FailureReason = "empty_request"
	FailureMissingCredential FailureReason = "missing_credential"
	FailureTransport         FailureReason = "transport"
	FailureEmptyResponse     FailureReason = "empty_response"
	FailureMalformedResponse FailureReason = "malformed_response"
)

// User-facing texts. The concierge speaks Italian.
const (
	MissingCredentialText = "Chiave API mancante."
	NoItineraryText       = "L'IA non è riuscita a generare un itinerario specifico. Prova a riformulare la richiesta."
	ConnectionErrorText   = "Si è verificato un errore di connessione."
	EmptyRequestText      = "Scrivi cosa ti piacerebbe assaggiare o visitare."
)

// Message is the neutral text shown to the user for a failure.
func (f FailureReason) Message() string {
	switch f {
	case FailureNone:
		return ""
	case FailureMissingCredential:
		return MissingCredentialText
	case FailureTransport:
		return ConnectionErrorText
	case FailureEmptyRequest:
		return EmptyRequestText
	default:
		return NoItineraryText
	}
}

// Result is either an Itinerary or a FailureReason, never both.
type Result struct {
	Itinerary *Itinerary
	Failure   FailureReason
}

func succeeded(it *Itinerary) Result { return Result{Itinerary: it} }

func failed(reason FailureReason) Result { return Result{Failure: reason} }

// OK reports whether an itinerary was produced.
func (r Result) OK() bool { return r.Itinerary != nil && r.Failure == FailureNone }
