package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/bobmcallan/dirkit/internal/models"
)

// groupEnvelope is a single-group response with the API's error envelope.
type groupEnvelope struct {
	models.Group
	Error *models.APIErrorBody `json:"error"`
}

// GetGroup retrieves a group by email or ID. A not-found envelope maps
// to models.ErrNotFound; every other envelope is a DirectoryError.
func (c *Client) GetGroup(ctx context.Context, groupKey string) (*models.Group, error) {
	reqURL := c.baseURL + "/groups/" + url.PathEscape(groupKey)

	var resp groupEnvelope
	if err := c.do(ctx, http.MethodGet, reqURL, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Error != nil {
		if resp.Error.Code == http.StatusNotFound {
			return nil, models.ErrNotFound
		}
		return nil, models.NewDirectoryError(resp.Error)
	}

	return &resp.Group, nil
}

// IsEmailAGroup reports whether the email resolves to a known group.
// Any API error envelope maps to false for compatibility with existing
// callers, but envelopes other than not-found are logged at warn level
// so a permission or quota failure is not mistaken for absence.
// Transport failures surface as errors.
func (c *Client) IsEmailAGroup(ctx context.Context, email string) (bool, error) {
	_, err := c.GetGroup(ctx, email)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}

	var dirErr *models.DirectoryError
	if errors.As(err, &dirErr) {
		c.logger.Warn().Int("code", dirErr.Code).Str("message", dirErr.Message).Msg("Group lookup failed, treating as not a group")
		return false, nil
	}

	return false, err
}
