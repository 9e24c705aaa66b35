package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/HammerMeetNail/butterfly/internal/models"
	"github.com/HammerMeetNail/butterfly/internal/services"
)

const msgInvalidPage = "Invalid page."

type UserHandler struct {
	directoryService services.DirectoryServiceInterface
}

func NewUserHandler(directoryService services.DirectoryServiceInterface) *UserHandler {
	return &UserHandler{directoryService: directoryService}
}

type DirectoryResponse struct {
	Count    int                  `json:"count"`
	Next     *string              `json:"next"`
	Previous *string              `json:"previous"`
	PageSize int                  `json:"page_size"`
	Results  []models.UserSummary `json:"results"`
}

// List serves the paginated user directory.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if raw := query.Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			writeDetail(w, http.StatusNotFound, msgInvalidPage)
			return
		}
		page = p
	}

	result, err := h.directoryService.Search(r.Context(), models.DirectoryQuery{
		Search: query.Get("search"),
		Page:   page,
	})
	if errors.Is(err, services.ErrInvalidPage) {
		writeDetail(w, http.StatusNotFound, msgInvalidPage)
		return
	}
	if err != nil {
		logRequestError(r, "Error searching directory", err)
		writeDetail(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	resp := DirectoryResponse{
		Count:    result.Count,
		PageSize: result.PageSize,
		Results:  result.Results,
	}
	if result.HasNext() {
		resp.Next = pageLink(r, result.Page+1)
	}
	if result.HasPrevious() {
		resp.Previous = pageLink(r, result.Page-1)
	}
	writeJSON(w, http.StatusOK, resp)
}

// pageLink builds an absolute link to another page of the current query.
// The first page is linked without a page parameter.
func pageLink(r *http.Request, page int) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	link := u.String()
	return &link
}
