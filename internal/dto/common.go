package dto

// ListQuery carries the filter, sort and pagination parameters shared by the
// listing endpoints. Fields that do not apply to a resource are ignored.
type ListQuery struct {
	Search    string `query:"search"`
	Category  string `query:"category"`
	Status    string `query:"status" validate:"omitempty,oneof=Draft Published Archived"`
	Role      string `query:"role" validate:"omitempty,oneof=user editor admin"`
	DateFrom  string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo    string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	SortBy    string `query:"sort_by" validate:"omitempty,oneof=date title author"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
	PerPage   int    `query:"per_page" validate:"omitempty,min=1,max=200"`
	Page      int    `query:"page" validate:"omitempty,min=1"`
}

// LastPage computes the final page number for the given totals. A page beyond
// this bound yields an empty row set, not an error.
func LastPage(total int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	return pages
}
