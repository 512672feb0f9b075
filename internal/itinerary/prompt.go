package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"terrefvg/internal/directory"
	"terrefvg/internal/geo"
)

const systemInstruction = `Sei un esperto concierge digitale per "TerreFVG", una rete di aziende agricole in Friuli Venezia Giulia.
Il tuo obiettivo è creare itinerari turistici brevi (max 3 tappe) basati sulla richiesta dell'utente.
Usa SOLO le aziende fornite nel contesto.
Sii persuasivo e spiega perché hai scelto ogni tappa.`

// farmProjection is the compact view of a farm sent to the model. The full
// record is never sent.
type farmProjection struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Products  string `json:"products"`
	Location  string `json:"location"`
}

func projectCatalog(farms []directory.Farm) (string, error) {
	proj := make([]farmProjection, len(farms))
	for i, f := range farms {
		proj[i] = farmProjection{
			ID:        f.ID,
			Name:      f.Name,
			Specialty: f.Specialty,
			Products:  strings.Join(f.ProductNames(), ", "),
			Location:  f.Address,
		}
	}
	data, err := json.Marshal(proj)
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog: %w", err)
	}
	return string(data), nil
}

func itineraryPrompt(catalogJSON, request string) string {
	var b strings.Builder
	b.WriteString("Dati delle aziende (Database JSON):\n")
	b.WriteString(catalogJSON)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Richiesta Utente: %q\n\n", request)
	b.WriteString("Genera un itinerario JSON valido.")
	return b.String()
}

func advicePrompt(origin geo.LatLng, farm directory.Farm) string {
	return fmt.Sprintf(`L'utente si trova alle coordinate: %v, %v.
La destinazione è l'azienda agricola: %q situata a %q.

Usa Google Maps per verificare la posizione reale e il traffico tipico o le strade principali.
Fornisci un consiglio breve (max 3 frasi) su come raggiungere la destinazione, indicando la direzione e il tipo di strada (es. autostrada, strada di montagna).`,
		origin.Lat, origin.Lng, farm.Name, farm.Address)
}
