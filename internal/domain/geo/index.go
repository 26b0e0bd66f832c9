// Package geo answers proximity queries over classmates that have a location.
package geo

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/okian/classmates/internal/domain/model"
)

const (
	tolerance   = 0.0001
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
	earthRadius = 6371.0 // km
)

// Match is a classmate returned by a query with its great-circle distance
// from the query point.
type Match struct {
	Person     model.Person `json:"person"`
	DistanceKm float64      `json:"distance_km"`
}

// item wraps a person for R-tree indexing.
type item struct {
	person model.Person
	rect   rtreego.Rect
}

func (it *item) Bounds() rtreego.Rect {
	return it.rect
}

// Index is an R-tree over (lat, lng). It is safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
	size int
}

// NewIndex builds an index over people. People without a location are skipped.
func NewIndex(people []model.Person) *Index {
	idx := &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for _, p := range people {
		idx.Insert(p)
	}
	return idx
}

// Insert adds p to the index and reports whether it had a location.
func (x *Index) Insert(p model.Person) bool {
	if !p.HasLocation() {
		return false
	}
	pt := rtreego.Point{p.Location.Lat, p.Location.Lng}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.tree.Insert(&item{person: p, rect: pt.ToRect(tolerance)})
	x.size++
	return true
}

// Size returns the number of indexed people.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.size
}

// Nearest returns the n people closest to (lat, lng) by great-circle
// distance, closest first.
func (x *Index) Nearest(lat, lng float64, n int) ([]Match, error) {
	if err := checkCoordinate(lat, lng); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if n > x.size {
		n = x.size
	}
	if n <= 0 {
		return []Match{}, nil
	}

	// The tree ranks by planar distance in degrees, which is only a candidate
	// set: the true n nearest all lie within the farthest of these n.
	var reach float64
	for _, s := range x.tree.NearestNeighbors(n, rtreego.Point{lat, lng}) {
		if it, ok := s.(*item); ok {
			reach = math.Max(reach, distance(it.person, lat, lng))
		}
	}

	out, err := x.within(lat, lng, reach)
	if err != nil {
		return nil, err
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// WithinRadius returns every person within km of (lat, lng), closest first.
func (x *Index) WithinRadius(lat, lng, km float64) ([]Match, error) {
	if err := checkCoordinate(lat, lng); err != nil {
		return nil, err
	}
	if km <= 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, km)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.within(lat, lng, km)
}

// within collects everyone at most km away, sorted. Callers hold x.mu.
func (x *Index) within(lat, lng, km float64) ([]Match, error) {
	boxes, err := searchBoxes(lat, lng, km)
	if err != nil {
		return nil, err
	}

	seen := make(map[*item]struct{})
	out := make([]Match, 0)
	for _, box := range boxes {
		for _, s := range x.tree.SearchIntersect(box) {
			it, ok := s.(*item)
			if !ok {
				continue
			}
			if _, dup := seen[it]; dup {
				continue
			}
			seen[it] = struct{}{}
			if d := distance(it.person, lat, lng); d <= km {
				out = append(out, Match{Person: it.person, DistanceKm: d})
			}
		}
	}
	sortByDistance(out)
	return out, nil
}

// searchBoxes covers the circle of radius km around (lat, lng) with one or two
// rectangles, splitting at the antimeridian.
func searchBoxes(lat, lng, km float64) ([]rtreego.Rect, error) {
	dLat := km / earthRadius * (180 / math.Pi)
	south := math.Max(lat-dLat, -90)
	north := math.Min(lat+dLat, 90)

	// Longitude span grows toward the pole-most edge of the box.
	dLng := 180.0
	if south > -90 && north < 90 {
		edge := math.Max(math.Abs(south), math.Abs(north))
		if c := math.Cos(edge * math.Pi / 180); c > 0 {
			dLng = math.Min(dLat/c, 180)
		}
	}

	var spans [][2]float64
	switch west, east := lng-dLng, lng+dLng; {
	case dLng >= 180:
		spans = [][2]float64{{-180, 180}}
	case west < -180:
		spans = [][2]float64{{west + 360, 180}, {-180, east}}
	case east > 180:
		spans = [][2]float64{{west, 180}, {-180, east - 360}}
	default:
		spans = [][2]float64{{west, east}}
	}

	height := math.Max(north-south, tolerance)
	boxes := make([]rtreego.Rect, 0, len(spans))
	for _, s := range spans {
		box, err := rtreego.NewRect(rtreego.Point{south, s[0]}, []float64{height, math.Max(s[1]-s[0], tolerance)})
		if err != nil {
			return nil, fmt.Errorf("radius search bounds: %w", err)
		}
		boxes = append(boxes, box)
	}
	return boxes, nil
}

func distance(p model.Person, lat, lng float64) float64 {
	return Haversine(lat, lng, p.Location.Lat, p.Location.Lng)
}

func sortByDistance(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].DistanceKm != ms[j].DistanceKm {
			return ms[i].DistanceKm < ms[j].DistanceKm
		}
		return ms[i].Person.ID < ms[j].Person.ID
	})
}

func checkCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidCoordinate, lat, lng)
	}
	return nil
}

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
