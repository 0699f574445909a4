package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"socialhub/internal/httputil"
	"socialhub/internal/model"
)

const (
	pageParam     = "page"
	pageSizeParam = "page_size"
)

// parsePage reads ?page and ?page_size. A malformed page number is an invalid
// page; a malformed size falls back to the default and large sizes are capped.
func parsePage(r *http.Request) (model.Page, error) {
	page := model.DefaultPage()
	q := r.URL.Query()

	if raw := q.Get(pageParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > model.MaxPageNumber {
			return page, model.ErrInvalidPage
		}
		page.Number = n
	}

	if raw := q.Get(pageSizeParam); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = min(n, model.MaxPageSize)
		}
	}
	return page, nil
}

// writePage writes the {count, next, previous, results} envelope.
func writePage[T any](w http.ResponseWriter, r *http.Request, page model.Page, count int, results []T) {
	if results == nil {
		results = []T{}
	}
	body := model.Paginated[T]{
		Count:   count,
		Results: results,
	}
	if page.HasNext(count) {
		body.Next = pageURL(r, page.Number+1)
	}
	if page.Number > 1 {
		body.Previous = pageURL(r, page.Number-1)
	}
	httputil.WriteJSON(w, http.StatusOK, body)
}

// pageURL is the absolute URL of the current request with the page replaced.
// Page 1 is expressed by omitting the parameter.
func pageURL(r *http.Request, number int) *string {
	q := r.URL.Query()
	if number <= 1 {
		q.Del(pageParam)
	} else {
		q.Set(pageParam, strconv.Itoa(number))
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	s := u.String()
	return &s
}
