package services

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// ListParams are the parsed query parameters of a list page.
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	Status    string
	SortBy    string
	SortOrder string
}

// ListSpec describes what a list accepts.
type ListSpec struct {
	DefaultSort  string
	DefaultOrder string
	SortKeys     []string
	PageSize     int
	MaxPageSize  int
}

// ParseListParams reads page, page_size, search, status, sort_by and
// sort_order from q. Out of range or unknown values fall back to defaults.
func ParseListParams(q url.Values, spec ListSpec) ListParams {
	params := ListParams{
		Page:      1,
		PageSize:  spec.PageSize,
		SortBy:    spec.DefaultSort,
		SortOrder: spec.DefaultOrder,
	}
	if params.SortOrder == "" {
		params.SortOrder = "asc"
	}

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		params.Page = v
	}
	if v, err := strconv.Atoi(q.Get("page_size")); err == nil && v > 0 && v <= spec.MaxPageSize {
		params.PageSize = v
	}
	params.Search = strings.TrimSpace(q.Get("search"))
	params.Status = strings.TrimSpace(q.Get("status"))

	if sb := q.Get("sort_by"); slices.Contains(spec.SortKeys, sb) {
		params.SortBy = sb
	}
	switch q.Get("sort_order") {
	case "asc", "desc":
		params.SortOrder = q.Get("sort_order")
	}
	return params
}

// Sort returns the PocketBase sort expression.
func (p ListParams) Sort() string {
	if p.SortOrder == "desc" {
		return "-" + p.SortBy
	}
	return p.SortBy
}

// Pagination describes the page being shown.
type Pagination struct {
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

func paginate(total, page, pageSize int) Pagination {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	return Pagination{Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}

// Offset is the index of the first row on the page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PageNumbers lists every page for pagination controls.
func (p Pagination) PageNumbers() []int {
	nums := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		nums = append(nums, i)
	}
	return nums
}

// OfferListItem is one row of the offer register.
type OfferListItem struct {
	Index        int
	ID           string
	OfferNumber  string
	Title        string
	TenderNumber string
	CustomerName string
	OfferDate    string
	Status       OfferStatus
	Total        decimal.Decimal
	EMDAmount    float64
}

// OfferList is a page of offers.
type OfferList struct {
	Items      []OfferListItem
	Pagination Pagination
}

// OfferListSpec lists the sortable offer columns.
var OfferListSpec = ListSpec{
	DefaultSort:  "created",
	DefaultOrder: "desc",
	SortKeys:     []string{"offer_number", "title", "offer_date", "status", "created"},
}

func offerFilter(params ListParams) (string, map[string]any) {
	var clauses []string
	bind := map[string]any{}
	if s := OfferStatus(params.Status); s.Valid() {
		clauses = append(clauses, "status = {:status}")
		bind["status"] = string(s)
	}
	if params.Search != "" {
		clauses = append(clauses, "(title ~ {:search} || offer_number ~ {:search})")
		bind["search"] = params.Search
	}
	if len(clauses) == 0 {
		return "1=1", bind
	}
	return strings.Join(clauses, " && "), bind
}

// ListOffers returns one page of offers with their totals derived from the
// work items.
func ListOffers(app core.App, params ListParams) (*OfferList, error) {
	filter, bind := offerFilter(params)

	all, err := app.FindRecordsByFilter("offers", filter, "", 0, 0, bind)
	if err != nil {
		return nil, fmt.Errorf("count offers: %w", err)
	}
	page := paginate(len(all), params.Page, params.PageSize)

	records, err := app.FindRecordsByFilter("offers", filter, params.Sort(), page.PageSize, page.Offset(), bind)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}

	names := newNameCache(app)
	list := &OfferList{Pagination: page, Items: make([]OfferListItem, 0, len(records))}
	for i, rec := range records {
		items, err := loadWorkItems(app, rec.Id)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, OfferListItem{
			Index:        page.Offset() + i + 1,
			ID:           rec.Id,
			OfferNumber:  rec.GetString("offer_number"),
			Title:        rec.GetString("title"),
			TenderNumber: names.get("tenders", rec.GetString("tender"), "tender_number"),
			CustomerName: names.get("customers", rec.GetString("customer"), "name"),
			OfferDate:    rec.GetString("offer_date"),
			Status:       OfferStatus(rec.GetString("status")),
			Total:        AggregateTotal(items),
			EMDAmount:    rec.GetFloat("emd_amount"),
		})
	}
	return list, nil
}

// TenderListItem is one row of the tender list.
type TenderListItem struct {
	Index          int
	ID             string
	TenderNumber   string
	Title          string
	CustomerName   string
	EstimatedValue float64
	EMDAmount      float64
	DueDate        string
}

// TenderList is a page of tenders.
type TenderList struct {
	Items      []TenderListItem
	Pagination Pagination
}

// TenderListSpec lists the sortable tender columns.
var TenderListSpec = ListSpec{
	DefaultSort:  "tender_number",
	DefaultOrder: "asc",
	SortKeys:     []string{"tender_number", "title", "due_date", "estimated_value", "created"},
}

// ListTenders returns one page of tenders matching the search text.
func ListTenders(app core.App, params ListParams) (*TenderList, error) {
	filter := "1=1"
	bind := map[string]any{}
	if params.Search != "" {
		filter = "tender_number ~ {:search} || title ~ {:search}"
		bind["search"] = params.Search
	}

	all, err := app.FindRecordsByFilter("tenders", filter, "", 0, 0, bind)
	if err != nil {
		return nil, fmt.Errorf("count tenders: %w", err)
	}
	page := paginate(len(all), params.Page, params.PageSize)

	records, err := app.FindRecordsByFilter("tenders", filter, params.Sort(), page.PageSize, page.Offset(), bind)
	if err != nil {
		return nil, fmt.Errorf("query tenders: %w", err)
	}

	names := newNameCache(app)
	list := &TenderList{Pagination: page, Items: make([]TenderListItem, 0, len(records))}
	for i, rec := range records {
		list.Items = append(list.Items, TenderListItem{
			Index:          page.Offset() + i + 1,
			ID:             rec.Id,
			TenderNumber:   rec.GetString("tender_number"),
			Title:          rec.GetString("title"),
			CustomerName:   names.get("customers", rec.GetString("customer"), "name"),
			EstimatedValue: rec.GetFloat("estimated_value"),
			EMDAmount:      rec.GetFloat("emd_amount"),
			DueDate:        rec.GetString("due_date"),
		})
	}
	return list, nil
}

// nameCache memoises display-field lookups for related records.
type nameCache struct {
	app  core.App
	seen map[string]string
}

func newNameCache(app core.App) *nameCache {
	return &nameCache{app: app, seen: make(map[string]string)}
}

func (c *nameCache) get(collection, id, field string) string {
	if id == "" {
		return ""
	}
	key := collection + "/" + id
	if v, ok := c.seen[key]; ok {
		return v
	}
	v := ""
	if rec, err := c.app.FindRecordById(collection, id); err == nil {
		v = rec.GetString(field)
	}
	c.seen[key] = v
	return v
}
