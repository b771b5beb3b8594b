package arena

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"plmsync.GO/core/syncerr"
)

// MatchAll is the listing filter that selects every item number.
const MatchAll = "*"

// ListItems pages through items whose number starts with prefix ("" for all).
// Paging stops at the first page shorter than the page size.
func (c *Client) ListItems(ctx context.Context, prefix string) ([]ItemSummary, error) {
	filter := MatchAll
	if prefix != "" && prefix != MatchAll {
		filter = prefix + MatchAll
	}
	var all []ItemSummary
	for offset := 0; ; offset += c.pageSize {
		q := url.Values{}
		q.Set("number", filter)
		q.Set("offset", strconv.Itoa(offset))
		q.Set("limit", strconv.Itoa(c.pageSize))
		payload, err := c.get(ctx, "/items", q)
		if err != nil {
			return nil, err
		}
		var page []ItemSummary
		if err := decodeResults(payload, &page); err != nil {
			return nil, fmt.Errorf("decode item listing: %w", err)
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			return all, nil
		}
	}
}

// GetItem returns the full item record; a missing item wraps syncerr.ErrNotFound.
func (c *Client) GetItem(ctx context.Context, guid string) (*Item, error) {
	payload, err := c.get(ctx, "/items/"+url.PathEscape(guid), nil)
	if err != nil {
		return nil, err
	}
	var it Item
	if err := decode(payload, &it); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", guid, err)
	}
	return &it, nil
}

// FindItemByNumber looks an item up by exact number and returns its full record.
func (c *Client) FindItemByNumber(ctx context.Context, number string) (*Item, error) {
	q := url.Values{}
	q.Set("number", number)
	q.Set("limit", "1")
	payload, err := c.get(ctx, "/items", q)
	if err != nil {
		return nil, err
	}
	var page []ItemSummary
	if err := decodeResults(payload, &page); err != nil {
		return nil, fmt.Errorf("decode item lookup: %w", err)
	}
	for _, s := range page {
		if s.Number == number {
			return c.GetItem(ctx, s.GUID)
		}
	}
	return nil, fmt.Errorf("item %s: %w", number, syncerr.ErrNotFound)
}

func (c *Client) GetSourcing(ctx context.Context, guid string) ([]Sourcing, error) {
	payload, err := c.get(ctx, "/items/"+url.PathEscape(guid)+"/sourcing", nil)
	if errors.Is(err, syncerr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Sourcing
	if err := decodeResults(payload, &out); err != nil {
		return nil, fmt.Errorf("decode sourcing %s: %w", guid, err)
	}
	return out, nil
}

// GetBOM returns the item's BOM lines; an item without a BOM yields none.
func (c *Client) GetBOM(ctx context.Context, guid string) ([]BOMLine, error) {
	payload, err := c.get(ctx, "/items/"+url.PathEscape(guid)+"/bom", nil)
	if errors.Is(err, syncerr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []BOMLine
	if err := decodeResults(payload, &out); err != nil {
		return nil, fmt.Errorf("decode bom %s: %w", guid, err)
	}
	return out, nil
}

// GetChanges returns completed change orders.
func (c *Client) GetChanges(ctx context.Context) ([]Change, error) {
	q := url.Values{}
	q.Set("lifecycleStatus.type", "COMPLETED")
	payload, err := c.get(ctx, "/changes", q)
	if err != nil {
		return nil, err
	}
	var out []Change
	if err := decodeResults(payload, &out); err != nil {
		return nil, fmt.Errorf("decode changes: %w", err)
	}
	return out, nil
}

// GetChangeItems returns the items affected by a change.
func (c *Client) GetChangeItems(ctx context.Context, changeGUID string) ([]BOMLine, error) {
	payload, err := c.get(ctx, "/changes/"+url.PathEscape(changeGUID)+"/items", nil)
	if err != nil {
		return nil, err
	}
	var out []BOMLine
	if err := decodeResults(payload, &out); err != nil {
		return nil, fmt.Errorf("decode change items %s: %w", changeGUID, err)
	}
	return out, nil
}
