package db

import (
	"github.com/uptrace/bun"
	"time"
)

const ApprovalApproved = "APPROVED"

type SeoKeywordModel struct {
	bun.BaseModel `bun:"table:seo_keywords,alias:sk"`
	Id            string    `bun:"id,pk"`
	Keyword       string    `bun:"keyword,notnull"`
	Slug          string    `bun:"slug,notnull,unique"`
	Category      string    `bun:"category,notnull"`
	Priority      int       `bun:"priority,notnull"`
	SearchVolume  *int      `bun:"search_volume"`
	Difficulty    *int      `bun:"difficulty"`
	Variations    []string  `bun:"variations,array"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type SeoLocationModel struct {
	bun.BaseModel    `bun:"table:seo_locations,alias:sl"`
	Id               string    `bun:"id,pk"`
	Name             string    `bun:"name,notnull"`
	Slug             string    `bun:"slug,notnull"`
	Type             string    `bun:"type,notnull"`
	Province         string    `bun:"province,notnull"`
	ProvinceSlug     string    `bun:"province_slug,notnull"`
	ParentLocationId *string   `bun:"parent_location_id"`
	Latitude         *float64  `bun:"latitude,type:numeric(10,7)"`
	Longitude        *float64  `bun:"longitude,type:numeric(10,7)"`
	Population       *int      `bun:"population"`
	ServiceCount     int       `bun:"service_count,notnull,default:0"`
	SalonCount       int       `bun:"salon_count,notnull,default:0"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// SeoPageLinkModel is one element of the related_services and
// nearby_locations json columns.
type SeoPageLinkModel struct {
	Label string `json:"label"`
	Url   string `json:"url"`
	Type  string `json:"type"`
}

type SeoPageCacheModel struct {
	bun.BaseModel   `bun:"table:seo_page_cache,alias:spc"`
	Id              int64              `bun:"id,pk,autoincrement"`
	KeywordId       string             `bun:"keyword_id,notnull"`
	LocationId      string             `bun:"location_id,notnull"`
	Url             string             `bun:"url,notnull,unique"`
	H1              string             `bun:"h1,notnull"`
	H2Headings      []string           `bun:"h2_headings,array"`
	H3Headings      []string           `bun:"h3_headings,array"`
	IntroText       string             `bun:"intro_text,notnull"`
	MetaTitle       string             `bun:"meta_title,notnull"`
	MetaDescription string             `bun:"meta_description,notnull"`
	SchemaMarkup    map[string]any     `bun:"schema_markup,type:jsonb"`
	RelatedServices []SeoPageLinkModel `bun:"related_services,type:jsonb"`
	NearbyLocations []SeoPageLinkModel `bun:"nearby_locations,type:jsonb"`
	ServiceCount    int                `bun:"service_count,notnull"`
	SalonCount      int                `bun:"salon_count,notnull"`
	AvgPrice        *float64           `bun:"avg_price,type:numeric(10,2)"`
	LastGenerated   time.Time          `bun:"last_generated,notnull"`
	CreatedAt       time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// pageReplaceColumns lists every column an upsert overwrites on conflict.
// id, url and created_at keep their original values.
var pageReplaceColumns = []string{
	"keyword_id",
	"location_id",
	"h1",
	"h2_headings",
	"h3_headings",
	"intro_text",
	"meta_title",
	"meta_description",
	"schema_markup",
	"related_services",
	"nearby_locations",
	"service_count",
	"salon_count",
	"avg_price",
	"last_generated",
}

type SalonModel struct {
	bun.BaseModel  `bun:"table:salons,alias:sa"`
	Id             string `bun:"id,pk"`
	Name           string `bun:"name,notnull"`
	Province       string `bun:"province"`
	City           string `bun:"city"`
	Town           string `bun:"town"`
	ApprovalStatus string `bun:"approval_status,notnull"`
}

type ServiceModel struct {
	bun.BaseModel  `bun:"table:services,alias:svc"`
	Id             string  `bun:"id,pk"`
	SalonId        string  `bun:"salon_id,notnull"`
	Title          string  `bun:"title,notnull"`
	Price          float64 `bun:"price,type:numeric(10,2),notnull"`
	ApprovalStatus string  `bun:"approval_status,notnull"`
}
