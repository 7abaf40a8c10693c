package analytics

// Waypoint is a routing unit: a coordinate plus whatever metadata the caller
// attached. Meta is never inspected or modified, only carried through
// reordering.
type Waypoint struct {
	Latitude  float64                `json:"latitude"`
	Longitude float64                `json:"longitude"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// OptimizeRoute orders waypoints with a greedy nearest-neighbor tour and
// returns the tour plus its total length in kilometers. The first input
// waypoint is fixed as the start; from there the closest unvisited waypoint
// is appended repeatedly, ties broken by input order. O(n²), a heuristic
// only - the result is not guaranteed to be the shortest possible tour.
//
// Fewer than 2 waypoints are returned unchanged with distance 0.
func OptimizeRoute(waypoints []Waypoint) ([]Waypoint, float64) {
	if len(waypoints) < 2 {
		return waypoints, 0
	}

	unvisited := make([]Waypoint, len(waypoints))
	copy(unvisited, waypoints)

	route := make([]Waypoint, 0, len(waypoints))
	route = append(route, unvisited[0])
	unvisited = unvisited[1:]

	for len(unvisited) > 0 {
		last := route[len(route)-1]
		nearest := 0
		nearestDist := Haversine(last.Latitude, last.Longitude, unvisited[0].Latitude, unvisited[0].Longitude)
		for i := 1; i < len(unvisited); i++ {
			d := Haversine(last.Latitude, last.Longitude, unvisited[i].Latitude, unvisited[i].Longitude)
			if d < nearestDist {
				nearest = i
				nearestDist = d
			}
		}
		route = append(route, unvisited[nearest])
		unvisited = append(unvisited[:nearest], unvisited[nearest+1:]...)
	}

	total := 0.0
	for i := 0; i < len(route)-1; i++ {
		total += Haversine(route[i].Latitude, route[i].Longitude, route[i+1].Latitude, route[i+1].Longitude)
	}

	return route, total
}
