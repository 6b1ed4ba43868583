package internal

import (
	"context"
	"github.com/stylrsa/seo-pregen/internal/db"
	"github.com/uptrace/bun"
)

// Repository reads reference data and reads and writes the page cache. Every
// error it returns is a ConnectivityError or a TaskError.
type Repository struct {
	connection bun.IDB
}

func NewRepository(connection bun.IDB) *Repository {
	return &Repository{connection: connection}
}

// Keywords returns all keywords, priority ascending then search volume
// descending.
func (r *Repository) Keywords(ctx context.Context) ([]Keyword, error) {
	models, err := db.GetKeywords(ctx, r.connection)
	if err != nil {
		return nil, Classify("loading keywords", err)
	}

	keywords := make([]Keyword, 0, len(models))
	for _, m := range models {
		keywords = append(keywords, Keyword{
			Id:           m.Id,
			Text:         m.Keyword,
			Slug:         m.Slug,
			Category:     m.Category,
			Priority:     m.Priority,
			SearchVolume: m.SearchVolume,
		})
	}

	return keywords, nil
}

func (r *Repository) CountLocations(ctx context.Context, types []LocationType) (int, error) {
	count, err := db.CountLocations(ctx, r.connection, typeNames(types))
	if err != nil {
		return 0, Classify("counting locations", err)
	}

	return count, nil
}

func (r *Repository) Locations(ctx context.Context, types []LocationType, order LocationOrder, skip, take int) ([]Location, error) {
	models, err := db.GetLocations(ctx, r.connection, typeNames(types), order == OrderByPopulation, skip, take)
	if err != nil {
		return nil, Classify("loading locations", err)
	}

	return toLocations(models), nil
}

// NearbyLocations returns the largest cities and towns of a province.
func (r *Repository) NearbyLocations(ctx context.Context, provinceSlug string, take int) ([]Location, error) {
	types := typeNames([]LocationType{LocationCity, LocationTown})
	models, err := db.GetLocationsInProvince(ctx, r.connection, provinceSlug, types, take)
	if err != nil {
		return nil, Classify("loading nearby locations", err)
	}

	return toLocations(models), nil
}

func (r *Repository) LookupPage(ctx context.Context, url string) (*CachedPage, error) {
	m, err := db.GetPageByUrl(ctx, r.connection, url)
	if err != nil {
		return nil, Classify("looking up cached page", err)
	}
	if m == nil {
		return nil, nil
	}

	return &CachedPage{
		KeywordId:  m.KeywordId,
		LocationId: m.LocationId,
		Url:        m.Url,
		Content: PageContent{
			H1:              m.H1,
			H2Headings:      m.H2Headings,
			H3Headings:      m.H3Headings,
			IntroText:       m.IntroText,
			MetaTitle:       m.MetaTitle,
			MetaDescription: m.MetaDescription,
			SchemaMarkup:    m.SchemaMarkup,
			RelatedServices: fromLinkModels(m.RelatedServices),
			NearbyLocations: fromLinkModels(m.NearbyLocations),
		},
		ServiceCount:  m.ServiceCount,
		SalonCount:    m.SalonCount,
		AvgPrice:      m.AvgPrice,
		LastGenerated: m.LastGenerated,
	}, nil
}

// UpsertPage reports false when a page generated later than page is already
// cached under its url.
func (r *Repository) UpsertPage(ctx context.Context, page *CachedPage) (bool, error) {
	affected, err := db.UpsertPage(ctx, r.connection, &db.SeoPageCacheModel{
		KeywordId:       page.KeywordId,
		LocationId:      page.LocationId,
		Url:             page.Url,
		H1:              page.Content.H1,
		H2Headings:      page.Content.H2Headings,
		H3Headings:      page.Content.H3Headings,
		IntroText:       page.Content.IntroText,
		MetaTitle:       page.Content.MetaTitle,
		MetaDescription: page.Content.MetaDescription,
		SchemaMarkup:    page.Content.SchemaMarkup,
		RelatedServices: toLinkModels(page.Content.RelatedServices),
		NearbyLocations: toLinkModels(page.Content.NearbyLocations),
		ServiceCount:    page.ServiceCount,
		SalonCount:      page.SalonCount,
		AvgPrice:        page.AvgPrice,
		LastGenerated:   page.LastGenerated,
	})
	if err != nil {
		return false, Classify("upserting cached page", err)
	}

	return affected > 0, nil
}

func (r *Repository) CountApprovedServices(ctx context.Context, filter LocationFilter) (int, error) {
	count, err := db.CountApprovedServices(ctx, r.connection, db.SalonFilter(filter))
	if err != nil {
		return 0, Classify("counting services", err)
	}

	return count, nil
}

func (r *Repository) CountApprovedSalons(ctx context.Context, filter LocationFilter) (int, error) {
	count, err := db.CountApprovedSalons(ctx, r.connection, db.SalonFilter(filter))
	if err != nil {
		return 0, Classify("counting salons", err)
	}

	return count, nil
}

func (r *Repository) AverageApprovedServicePrice(ctx context.Context, filter LocationFilter) (*float64, error) {
	avg, err := db.AverageApprovedServicePrice(ctx, r.connection, db.SalonFilter(filter))
	if err != nil {
		return nil, Classify("averaging service price", err)
	}

	return avg, nil
}

func typeNames(types []LocationType) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}

	return names
}

func toLocations(models []*db.SeoLocationModel) []Location {
	locations := make([]Location, 0, len(models))
	for _, m := range models {
		locations = append(locations, Location{
			Id:           m.Id,
			Name:         m.Name,
			Slug:         m.Slug,
			Type:         LocationType(m.Type),
			Province:     m.Province,
			ProvinceSlug: m.ProvinceSlug,
			ParentId:     m.ParentLocationId,
			Latitude:     m.Latitude,
			Longitude:    m.Longitude,
			Population:   m.Population,
			ServiceCount: m.ServiceCount,
			SalonCount:   m.SalonCount,
		})
	}

	return locations
}

func toLinkModels(links []Link) []db.SeoPageLinkModel {
	models := make([]db.SeoPageLinkModel, 0, len(links))
	for _, l := range links {
		models = append(models, db.SeoPageLinkModel(l))
	}

	return models
}

func fromLinkModels(models []db.SeoPageLinkModel) []Link {
	links := make([]Link, 0, len(models))
	for _, m := range models {
		links = append(links, Link(m))
	}

	return links
}
