package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_restaurant/internal/domain"
	"github.com/fjod/go_restaurant/internal/pagination"
	"github.com/fjod/go_restaurant/internal/restapi"
)

// ListHandler proxies the restaurant API list endpoints, answering every one
// of them with the same normalized page shape.
type ListHandler struct {
	api *restapi.Client
}

func NewListHandler(api *restapi.Client) *ListHandler {
	return &ListHandler{api: api}
}

func (h *ListHandler) MenuItems() http.HandlerFunc {
	return listRoute[domain.MenuItem](h.api, restapi.MenuItems)
}

func (h *ListHandler) Orders() http.HandlerFunc {
	return listRoute[domain.Order](h.api, restapi.Orders)
}

func (h *ListHandler) Vouchers() http.HandlerFunc {
	return listRoute[domain.Voucher](h.api, restapi.Vouchers)
}

func (h *ListHandler) Reservations() http.HandlerFunc {
	return listRoute[domain.Reservation](h.api, restapi.Reservations)
}

func (h *ListHandler) Users() http.HandlerFunc {
	return listRoute[domain.User](h.api, restapi.Users)
}

func (h *ListHandler) Roles() http.HandlerFunc {
	return listRoute[domain.Role](h.api, restapi.Roles)
}

type PageResponse[T any] struct {
	pagination.Result[T]
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

func listRoute[T any](api *restapi.Client, ep restapi.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := queryInt(q, "page", 1)
		limit := queryInt(q, "limit", pagination.DefaultLimit)

		filters := url.Values{}
		for k, vs := range q {
			if k != "page" && k != "limit" {
				filters[k] = vs
			}
		}

		res, err := restapi.List[T](r.Context(), api, ep, page, limit, filters)
		if err != nil {
			handleUpstreamError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, PageResponse[T]{Result: res, HasNext: res.HasNext(), HasPrev: res.HasPrev()})
	}
}

func queryInt(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return def
	}
	return v
}
