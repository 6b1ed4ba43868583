package db

import (
	"context"
	"database/sql"
	"errors"
	"github.com/stylrsa/seo-pregen/internal/util"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"time"
)

// SalonFilter narrows salons by address. Empty fields are not applied.
type SalonFilter struct {
	Province string
	City     string
	Town     string
}

func GetConnection(config *util.Config) (*bun.DB, error) {
	sqlDb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(config.DbConnectionString.Value),
		pgdriver.WithTimeout(30*time.Second),
	))

	// every in-flight task holds at most one connection at a time,
	// extra room is left for page fetches between chunks
	sqlDb.SetMaxOpenConns(config.ParallelLimit.Int() + 2)
	sqlDb.SetMaxIdleConns(config.ParallelLimit.Int() + 2)
	sqlDb.SetConnMaxIdleTime(5 * time.Minute)

	db := bun.NewDB(sqlDb, pgdialect.New())

	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),

		// BUNDEBUG=1 logs failed queries
		// BUNDEBUG=2 logs all queries
		bundebug.FromEnv("BUNDEBUG")))

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

func GetKeywords(ctx context.Context, connection bun.IDB) (keywords []*SeoKeywordModel, err error) {
	err = connection.NewSelect().
		Model(&keywords).
		Order("priority ASC").
		OrderExpr("search_volume DESC NULLS LAST").
		Order("id ASC").
		Scan(ctx)

	return keywords, err
}

func CountLocations(ctx context.Context, connection bun.IDB, types []string) (int, error) {
	return connection.NewSelect().
		Model((*SeoLocationModel)(nil)).
		Where("type IN (?)", bun.In(types)).
		Count(ctx)
}

// GetLocations returns one page of locations of the given types. Provinces are
// ordered by name, everything else by population first. id breaks ties so
// that offset pagination never repeats or drops a row.
func GetLocations(ctx context.Context, connection bun.IDB, types []string, byPopulation bool, offset, limit int) (locations []*SeoLocationModel, err error) {
	err = locationsQuery(connection, &locations, types, byPopulation, offset, limit).Scan(ctx)

	return locations, err
}

func locationsQuery(connection bun.IDB, locations *[]*SeoLocationModel, types []string, byPopulation bool, offset, limit int) *bun.SelectQuery {
	q := connection.NewSelect().
		Model(locations).
		Where("type IN (?)", bun.In(types))

	if byPopulation {
		q = q.OrderExpr("population DESC NULLS LAST")
	}

	return q.Order("name ASC", "id ASC").
		Offset(offset).
		Limit(limit)
}

func GetLocationsInProvince(ctx context.Context, connection bun.IDB, provinceSlug string, types []string, limit int) (locations []*SeoLocationModel, err error) {
	err = connection.NewSelect().
		Model(&locations).
		Where("province_slug = ?", provinceSlug).
		Where("type IN (?)", bun.In(types)).
		OrderExpr("population DESC NULLS LAST").
		Order("salon_count DESC", "id ASC").
		Limit(limit).
		Scan(ctx)

	return locations, err
}

// GetPageByUrl returns nil without an error when no page is cached for url.
func GetPageByUrl(ctx context.Context, connection bun.IDB, url string) (*SeoPageCacheModel, error) {
	page := new(SeoPageCacheModel)
	err := connection.NewSelect().
		Model(page).
		Where("url = ?", url).
		Limit(1).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return page, nil
}

// UpsertPage inserts page or fully replaces the row sharing its url. A row
// generated later than page is left untouched.
func UpsertPage(ctx context.Context, connection bun.IDB, page *SeoPageCacheModel) (affectedCount int, err error) {
	res, err := upsertPageQuery(connection, page).Exec(ctx)
	if err != nil {
		return 0, err
	}

	c, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(c), nil
}

func upsertPageQuery(connection bun.IDB, page *SeoPageCacheModel) *bun.InsertQuery {
	q := connection.NewInsert().
		Model(page).
		On("CONFLICT (url) DO UPDATE")

	for _, column := range pageReplaceColumns {
		q = q.Set("? = EXCLUDED.?", bun.Ident(column), bun.Ident(column))
	}

	return q.
		Where("spc.last_generated <= EXCLUDED.last_generated").
		Returning("NULL")
}

func CountApprovedServices(ctx context.Context, connection bun.IDB, filter SalonFilter) (int, error) {
	return approvedServices(connection, filter).Count(ctx)
}

func CountApprovedSalons(ctx context.Context, connection bun.IDB, filter SalonFilter) (int, error) {
	q := connection.NewSelect().
		Model((*SalonModel)(nil)).
		Where("sa.approval_status = ?", ApprovalApproved)

	return applySalonFilter(q, filter).Count(ctx)
}

// AverageApprovedServicePrice returns nil when no approved service matches.
func AverageApprovedServicePrice(ctx context.Context, connection bun.IDB, filter SalonFilter) (*float64, error) {
	var avg sql.NullFloat64
	err := approvedServices(connection, filter).
		ColumnExpr("AVG(svc.price)").
		Scan(ctx, &avg)
	if err != nil {
		return nil, err
	}

	if !avg.Valid {
		return nil, nil
	}

	return &avg.Float64, nil
}

func approvedServices(connection bun.IDB, filter SalonFilter) *bun.SelectQuery {
	q := connection.NewSelect().
		Model((*ServiceModel)(nil)).
		Join("JOIN salons AS sa ON sa.id = svc.salon_id").
		Where("svc.approval_status = ?", ApprovalApproved).
		Where("sa.approval_status = ?", ApprovalApproved)

	return applySalonFilter(q, filter)
}

func applySalonFilter(q *bun.SelectQuery, filter SalonFilter) *bun.SelectQuery {
	if filter.Province != "" {
		q = q.Where("sa.province = ?", filter.Province)
	}
	if filter.City != "" {
		q = q.Where("sa.city = ?", filter.City)
	}
	if filter.Town != "" {
		q = q.Where("sa.town = ?", filter.Town)
	}

	return q
}

// CreatePageCacheTable creates the page cache table and its unique url index
// when they are missing.
func CreatePageCacheTable(ctx context.Context, connection bun.IDB) error {
	_, err := connection.NewCreateTable().
		Model((*SeoPageCacheModel)(nil)).
		IfNotExists().
		Exec(ctx)

	return err
}
