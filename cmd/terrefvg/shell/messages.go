package shell

import "terrefvg/internal/itinerary"

// Results of async work carry the concierge epoch they were issued in.
// A result whose epoch no longer matches is dropped.
type (
	itineraryMsg struct {
		epoch   int
		request string
		result  itinerary.Result
	}

	directionsMsg struct {
		epoch  int
		farmID string
		advice itinerary.Advice
		err    error // geolocation failure
	}

	// resizeAppliedMsg is sent once a debounced resize reached the map.
	resizeAppliedMsg struct{}
)
