package shell

import (
	"terrefvg/internal/directory"
	"terrefvg/internal/itinerary"
)

// Mode is which screen has the keyboard.
type Mode int

const (
	ModeExplore Mode = iota
	ModeDetail
	ModeConcierge
	ModePassport
)

func (m Mode) String() string {
	switch m {
	case ModeExplore:
		return "explore"
	case ModeDetail:
		return "detail"
	case ModeConcierge:
		return "concierge"
	case ModePassport:
		return "passport"
	}
	return "unknown"
}

// State is everything the screens render from. Overlays and the map only
// ever see copies of it.
type State struct {
	Selected  string
	Filters   directory.FilterSet
	Itinerary *itinerary.Itinerary
	Mode      Mode

	// PanelFocus routes digit keys to itinerary steps instead of filters.
	PanelFocus bool
}

// HighlightSet is the ordered farm ids of the active itinerary.
func (s State) HighlightSet() []string {
	return s.Itinerary.FarmIDs()
}

// User-facing texts of the concierge.
const (
	WelcomeText = "Ciao! Sono la tua guida digitale per TerreFVG. Cosa ti piacerebbe fare oggi? " +
		"Posso suggerirti percorsi per vini, formaggi, relax o gite in famiglia."
	DirectionsRequestText = "Calcola il percorso dalla mia posizione utilizzando Google Maps."
	GeoUnsupportedText    = "Mi dispiace, il tuo dispositivo non supporta la geolocalizzazione."
	GeoDeniedText         = "Non sono riuscito ad accedere alla tua posizione. Verifica i permessi di geolocalizzazione."
	GeoFailedText         = "Non sono riuscito a determinare la tua posizione."
	NoStepsText           = "L'itinerario non contiene tappe: non posso calcolare un percorso."
)

// Suggestion is a canned concierge request.
type Suggestion struct {
	Label  string
	Prompt string
}

// Suggestions are offered while the transcript holds only the welcome.
var Suggestions = []Suggestion{
	{Label: "🍷 Vino e Formaggio", Prompt: "Voglio assaggiare vini rossi e formaggi forti"},
	{Label: "👨‍👩‍👧‍👦 Famiglia", Prompt: "Gita domenicale con bambini, miele e animali"},
	{Label: "🛍️ Shopping", Prompt: "Shopping gastronomico veloce"},
}
