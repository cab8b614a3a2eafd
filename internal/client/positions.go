package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rsclarke/citybus/internal/api"
	"github.com/rsclarke/citybus/internal/logging"
)

// RouteQuery encodes routes as repeated r[] parameters in the given order.
func RouteQuery(routes []int) string {
	parts := make([]string, len(routes))
	for i, r := range routes {
		parts[i] = "r[]=" + strconv.Itoa(r)
	}
	return strings.Join(parts, "&")
}

// PositionsURL returns the live update URL for city. The city is escaped as
// a single path segment.
func PositionsURL(base, city, query string) string {
	return base + url.PathEscape(city) + "/update?" + query
}

// Positions returns the current positions of buses on routes in city.
func (c *Client) Positions(ctx context.Context, city string, routes []int) ([]api.BusPosition, error) {
	query := c.versionQuery() + "&" + RouteQuery(routes)
	endpoint := PositionsURL(c.LiveBaseURL, city, query)

	resp, err := c.Do(ctx, http.MethodPost, endpoint, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Any status with a position list is accepted; an error status is only
	// reported when the body is not one.
	var positions []api.BusPosition
	if err := json.NewDecoder(resp.Body).Decode(&positions); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &ProtocolError{StatusCode: resp.StatusCode, URL: endpoint}
		}
		return nil, fmt.Errorf("decode positions: %w", err)
	}

	c.logger().Debug("fetched positions",
		logging.City(city),
		logging.Routes(routes),
		logging.Status(resp.StatusCode))

	return positions, nil
}
