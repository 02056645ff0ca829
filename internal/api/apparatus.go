package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pyro2927/ha-generac/internal/types"
)

// ApparatusListPath is the newest device-list endpoint, used by the mobile app.
// It doubles as the probe request for cookie-based sessions.
const ApparatusListPath = "/v5/Apparatus/list"

const apparatusListPathLegacy = "/v2/Apparatus/list"

// ApparatusList enumerates registered apparatuses. The v5 endpoint is tried
// first; the legacy v2 endpoint is used only when v5 reports no data, never on
// an error. A nil slice with a nil error means neither generation had data.
func (c *Client) ApparatusList(ctx context.Context) ([]types.Apparatus, error) {
	raw, err := c.Fetch(ctx, ApparatusListPath)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		c.logger.Debug("v5 apparatus list empty, falling back to v2")
		raw, err = c.Fetch(ctx, apparatusListPathLegacy)
		if err != nil {
			return nil, err
		}
	}
	if raw == nil {
		return nil, nil
	}

	var list []types.Apparatus
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &TransportError{Path: ApparatusListPath, Err: fmt.Errorf("unmarshal apparatus list: %w", err)}
	}
	return list, nil
}

// ApparatusDetail fetches the detail record for one apparatus, trying the v5
// endpoint first and the v1 endpoint on no-data. Nil detail with nil error
// means both generations reported no data for this apparatus.
func (c *Client) ApparatusDetail(ctx context.Context, apparatusID int) (*types.ApparatusDetail, error) {
	path := fmt.Sprintf("/v5/Apparatus/%d", apparatusID)
	raw, err := c.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		path = fmt.Sprintf("/v1/Apparatus/details/%d", apparatusID)
		c.logger.Debug("v5 apparatus detail empty, falling back to v1", "apparatus_id", apparatusID)
		raw, err = c.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}
	}
	if raw == nil {
		return nil, nil
	}

	var detail types.ApparatusDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("unmarshal apparatus detail: %w", err)}
	}
	return &detail, nil
}
