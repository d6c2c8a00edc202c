package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/dirkit/internal/models"
)

// userEnvelope is a single-user response with the API's error envelope.
type userEnvelope struct {
	models.User
	Error *models.APIErrorBody `json:"error"`
}

// userListEnvelope is the users collection response.
type userListEnvelope struct {
	Users         []*models.User       `json:"users"`
	NextPageToken string               `json:"nextPageToken"`
	Error         *models.APIErrorBody `json:"error"`
}

// aliasListEnvelope is the aliases sub-resource response.
type aliasListEnvelope struct {
	Aliases []models.Alias       `json:"aliases"`
	Error   *models.APIErrorBody `json:"error"`
}

// buildQuery joins search fields into the API's query expression.
// Keys are sorted so the expression is deterministic.
func buildQuery(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, fields[k]))
	}
	return strings.Join(parts, ",")
}

// FindUser searches the customer scope for a user matching all given
// field=value pairs. Only the first matched user is returned even when
// several match; callers depend on this first-match policy.
func (c *Client) FindUser(ctx context.Context, fields map[string]string) (*models.User, error) {
	params := url.Values{}
	params.Set("customer", c.customer)
	params.Set("query", buildQuery(fields))

	reqURL := c.baseURL + "/users?" + params.Encode()

	var resp userListEnvelope
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, models.NewDirectoryError(resp.Error)
	}

	if len(resp.Users) == 0 {
		return nil, models.ErrNotFound
	}

	if len(resp.Users) > 1 {
		c.logger.Debug().Int("matches", len(resp.Users)).Msg("User search matched multiple users, returning first")
	}

	return resp.Users[0], nil
}

// FindUsers lists every user in the customer scope, fetching pages
// sequentially until no nextPageToken remains. Page order is preserved.
func (c *Client) FindUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("customer", c.customer)
		params.Set("maxResults", strconv.Itoa(DefaultPageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		reqURL := c.baseURL + "/users?" + params.Encode()

		var resp userListEnvelope
		if err := c.do(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
			return nil, err
		}

		if resp.Error != nil {
			return nil, models.NewDirectoryError(resp.Error)
		}

		users = append(users, resp.Users...)

		if resp.NextPageToken == "" {
			return users, nil
		}
		pageToken = resp.NextPageToken
	}
}

// GetUser retrieves a user by primary email or ID. A not-found envelope
// maps to models.ErrNotFound; every other envelope is a DirectoryError.
func (c *Client) GetUser(ctx context.Context, userKey string) (*models.User, error) {
	reqURL := c.baseURL + "/users/" + url.PathEscape(userKey)

	var resp userEnvelope
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		if resp.Error.Code == http.StatusNotFound {
			return nil, models.ErrNotFound
		}
		return nil, models.NewDirectoryError(resp.Error)
	}

	return &resp.User, nil
}

// CreateUser creates a new user account and returns the created record.
func (c *Client) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	reqURL := c.baseURL + "/users"

	var resp userEnvelope
	if err := c.do(ctx, http.MethodPost, reqURL, user, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, models.NewDirectoryError(resp.Error)
	}

	return &resp.User, nil
}

// UpdateUser applies a partial update to an existing user.
func (c *Client) UpdateUser(ctx context.Context, userKey string, user *models.User) (*models.User, error) {
	reqURL := c.baseURL + "/users/" + url.PathEscape(userKey)

	var resp userEnvelope
	if err := c.do(ctx, http.MethodPatch, reqURL, user, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, models.NewDirectoryError(resp.Error)
	}

	return &resp.User, nil
}

// DeleteUser removes a user account. Success is an empty response body;
// a not-found envelope maps to models.ErrNotFound.
func (c *Client) DeleteUser(ctx context.Context, userKey string) error {
	reqURL := c.baseURL + "/users/" + url.PathEscape(userKey)

	var resp userEnvelope
	if err := c.do(ctx, http.MethodDelete, reqURL, nil, &resp); err != nil {
		return err
	}

	if resp.Error != nil {
		if resp.Error.Code == http.StatusNotFound {
			return models.ErrNotFound
		}
		return models.NewDirectoryError(resp.Error)
	}

	return nil
}

// GetUserAliases lists the email aliases attached to a user.
func (c *Client) GetUserAliases(ctx context.Context, userKey string) ([]string, error) {
	reqURL := c.baseURL + "/users/" + url.PathEscape(userKey) + "/aliases"

	var resp aliasListEnvelope
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		if resp.Error.Code == http.StatusNotFound {
			return nil, models.ErrNotFound
		}
		return nil, models.NewDirectoryError(resp.Error)
	}

	aliases := make([]string, 0, len(resp.Aliases))
	for _, a := range resp.Aliases {
		aliases = append(aliases, a.Alias)
	}
	return aliases, nil
}

// IsEmailAUser reports whether the email resolves to a known user.
// Search or transport failures surface as errors rather than false.
func (c *Client) IsEmailAUser(ctx context.Context, email string) (bool, error) {
	_, err := c.FindUser(ctx, map[string]string{"email": email})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// IsEmailAUserOrGroup reports whether the email resolves to a known user
// or group. The user check runs first and short-circuits: the group
// endpoint is never called when the email is a user.
func (c *Client) IsEmailAUserOrGroup(ctx context.Context, email string) (bool, error) {
	isUser, err := c.IsEmailAUser(ctx, email)
	if err != nil {
		return false, err
	}
	if isUser {
		return true, nil
	}
	return c.IsEmailAGroup(ctx, email)
}
