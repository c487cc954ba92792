// Package events is a read-only client for the TruckersMP public events
// API. Metadata fetched here (title, start time, banner) is display-only;
// it is never an input to the booking state machine.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"slotboard/rdx"
)

const DefaultAPIBase = "https://api.truckersmp.com/v2"

// Meta is the subset of event metadata the panel displays.
type Meta struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Banner string `json:"banner"`
	StartAt string `json:"start_at"`
}

var eventIDPattern = regexp.MustCompile(`/events/(\d+)`)
var digitsPattern = regexp.MustCompile(`^\d+$`)

// ExtractEventID pulls an event id out of a raw id string or a pasted
// event URL. Returns the empty string when nothing matches.
func ExtractEventID(value string) string {
	if digitsPattern.MatchString(value) {
		return value
	}
	if m := eventIDPattern.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return ""
}

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	if base == "" {
		base = DefaultAPIBase
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch returns metadata for one event, consulting the Redis cache first.
// A miss or API failure is not fatal to panel creation; callers fall back
// to whatever title the operator typed.
func (c *Client) Fetch(ctx context.Context, eventID string) (*Meta, error) {
	cacheKey := "tmp-event:" + eventID
	if cached, ok := rdx.CacheGet(ctx, cacheKey); ok {
		var meta Meta
		if err := json.Unmarshal([]byte(cached), &meta); err == nil {
			return &meta, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/events/%s", c.base, eventID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("event API status %d", resp.StatusCode)
	}

	var body struct {
		Response Meta `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(body.Response); err == nil {
		rdx.CacheSet(ctx, cacheKey, string(data), 10*time.Minute)
	}
	return &body.Response, nil
}
