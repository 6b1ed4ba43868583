package internal

import "time"

type LocationType string

const (
	LocationProvince LocationType = "PROVINCE"
	LocationCity     LocationType = "CITY"
	LocationTown     LocationType = "TOWN"
	LocationSuburb   LocationType = "SUBURB"
	LocationTownship LocationType = "TOWNSHIP"
)

// LocationOrder selects how a page of locations is sorted.
type LocationOrder int

const (
	OrderByName LocationOrder = iota
	OrderByPopulation
)

type Keyword struct {
	Id           string
	Text         string
	Slug         string
	Category     string
	Priority     int
	SearchVolume *int
}

type Location struct {
	Id           string
	Name         string
	Slug         string
	Type         LocationType
	Province     string
	ProvinceSlug string
	ParentId     *string
	Latitude     *float64
	Longitude    *float64
	Population   *int
	ServiceCount int
	SalonCount   int
}

// DisplayName is the bare name for provinces and "name, province" below them.
func (l Location) DisplayName() string {
	if l.Type == LocationProvince {
		return l.Name
	}

	return l.Name + ", " + l.Province
}

type Link struct {
	Label string
	Url   string
	Type  string
}

type PageContent struct {
	H1              string
	H2Headings      []string
	H3Headings      []string
	IntroText       string
	MetaTitle       string
	MetaDescription string
	SchemaMarkup    map[string]any
	RelatedServices []Link
	NearbyLocations []Link
}

type CachedPage struct {
	KeywordId     string
	LocationId    string
	Url           string
	Content       PageContent
	ServiceCount  int
	SalonCount    int
	AvgPrice      *float64
	LastGenerated time.Time
}

// PageFacts is everything a composer needs to write the content of one page.
type PageFacts struct {
	Keyword      Keyword
	Location     Location
	Url          string
	ServiceCount int
	SalonCount   int
	AvgPrice     *float64
	Related      []Keyword
	Nearby       []Location
}

// LocationFilter scopes approved salons to the area of a location.
type LocationFilter struct {
	Province string
	City     string
	Town     string
}

// FilterFor narrows provinces by province name only, cities and towns by city
// and province, suburbs and townships by town and province.
func FilterFor(location Location) LocationFilter {
	switch location.Type {
	case LocationProvince:
		return LocationFilter{Province: location.Name}
	case LocationCity, LocationTown:
		return LocationFilter{City: location.Name, Province: location.Province}
	case LocationSuburb, LocationTownship:
		return LocationFilter{Town: location.Name, Province: location.Province}
	}

	return LocationFilter{Province: location.Province}
}
