package mapbox

// Response codes shared by the directions and optimization APIs.
const (
	codeOk        = "Ok"
	codeNoRoute   = "NoRoute"
	codeNoSegment = "NoSegment"
	codeNoTrips   = "NoTrips"
)

// errorResponse is the body of a non-200 Mapbox response.
type errorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// geocodingResponse is a geocoding v5 FeatureCollection.
type geocodingResponse struct {
	Type     string             `json:"type"`
	Features []geocodingFeature `json:"features"`
}

// geocodingFeature is one geocoding match.
type geocodingFeature struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	PlaceType []string  `json:"place_type"`
	Relevance float64   `json:"relevance"`
	Text      string    `json:"text"`
	PlaceName string    `json:"place_name"`
	Center    []float64 `json:"center"` // [lng, lat]
}

// directionsResponse is a directions v5 response.
type directionsResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message,omitempty"`
	Routes    []directionsRoute `json:"routes"`
	Waypoints []apiWaypoint     `json:"waypoints,omitempty"`
}

type directionsRoute struct {
	Distance float64         `json:"distance"` // meters
	Duration float64         `json:"duration"` // seconds
	Geometry lineString      `json:"geometry"`
	Legs     []directionsLeg `json:"legs"`
}

type directionsLeg struct {
	Distance float64          `json:"distance"`
	Duration float64          `json:"duration"`
	Summary  string           `json:"summary"`
	Steps    []directionsStep `json:"steps,omitempty"`
}

type directionsStep struct {
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Name     string     `json:"name"`
	Geometry lineString `json:"geometry"`
}

// lineString is a GeoJSON LineString, requested with geometries=geojson.
type lineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"` // [lng, lat] pairs
}

type apiWaypoint struct {
	Name     string    `json:"name"`
	Location []float64 `json:"location"`
}

// optimizationResponse is an optimization v1 response.
type optimizationResponse struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message,omitempty"`
	Waypoints []optimizationWaypoint `json:"waypoints"`
	Trips     []directionsRoute      `json:"trips"`
}

// optimizationWaypoint is an input coordinate annotated with its position in
// the optimized trip.
type optimizationWaypoint struct {
	Name          string    `json:"name"`
	Location      []float64 `json:"location"`
	WaypointIndex int       `json:"waypoint_index"`
	TripsIndex    int       `json:"trips_index"`
}
