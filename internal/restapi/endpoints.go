package restapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/fjod/go_restaurant/internal/pagination"
)

// Endpoint is a paginated list resource. Alias is the array key used when the
// endpoint answers in the legacy named-array shape.
type Endpoint struct {
	Name  string
	Path  string
	Alias string
}

var (
	MenuItems    = Endpoint{Name: "menu-items", Path: "/menu-items", Alias: "menuItems"}
	Orders       = Endpoint{Name: "orders", Path: "/orders", Alias: "orders"}
	Vouchers     = Endpoint{Name: "vouchers", Path: "/vouchers", Alias: "vouchers"}
	Reservations = Endpoint{Name: "reservations", Path: "/reservations", Alias: "reservations"}
	Users        = Endpoint{Name: "users", Path: "/users", Alias: "users"}
	Roles        = Endpoint{Name: "roles", Path: "/roles", Alias: "roles"}
)

// List fetches one page of ep and normalizes it. Transport and status errors
// are returned; an unreadable body is not an error and yields an empty page.
func List[T any](ctx context.Context, c *Client, ep Endpoint, page, limit int, filters url.Values) (pagination.Result[T], error) {
	q := url.Values{}
	for k, vs := range filters {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	body, err := c.Get(ctx, ep.Path, q)
	if err != nil {
		return pagination.Result[T]{}, err
	}

	n := pagination.New[T](
		pagination.WithAliases(ep.Alias),
		pagination.WithLogger(c.log.With("endpoint", ep.Name)),
	)
	return n.Normalize(body, page, limit), nil
}
