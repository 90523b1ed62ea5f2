package dto

// PageMeta metadatos de página calculados sobre el total post-filtro,
// pre-paginación.
type PageMeta struct {
	Page      int `json:"page"`
	PerPage   int `json:"perPage"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// NewPageMeta calcula los metadatos. pageCount = ceil(total/perPage).
func NewPageMeta(page, perPage, total int) PageMeta {
	pageCount := 0
	if perPage > 0 {
		pageCount = (total + perPage - 1) / perPage
	}
	return PageMeta{Page: page, PerPage: perPage, PageCount: pageCount, Total: total}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
