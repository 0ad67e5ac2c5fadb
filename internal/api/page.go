// internal/api/page.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Page is the one listing shape handed to callers
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Take  int `json:"take"`
}

// pageParams are the skip/take the caller asked for
type pageParams struct {
	skip int
	take int
}

// normalizePage accepts a page envelope, a bare array, or an empty object and
// returns a page. Missing counters are filled from params.
func normalizePage[T any](raw []byte, params pageParams, defaultTake int) (*Page[T], error) {
	take := params.take
	if take <= 0 {
		take = defaultTake
	}
	page := &Page[T]{Data: []T{}, Skip: params.skip, Take: take}

	if len(bytes.TrimSpace(raw)) == 0 {
		return page, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, validationError("invalid response: listing is not JSON")
	}
	r := gjson.ParseBytes(raw)

	var items gjson.Result
	switch {
	case r.IsArray():
		items = r
	case r.IsObject() && r.Get("data").IsArray():
		items = r.Get("data")
		if v := r.Get("total"); v.Type == gjson.Number {
			page.Total = int(v.Int())
		} else {
			page.Total = -1
		}
		if v := r.Get("skip"); v.Type == gjson.Number {
			page.Skip = int(v.Int())
		}
		if v := r.Get("take"); v.Type == gjson.Number {
			page.Take = int(v.Int())
		}
	case r.IsObject() && !r.Get("data").Exists():
		return page, nil
	case r.Type == gjson.Null:
		return page, nil
	default:
		return nil, validationError("invalid response: unexpected listing shape")
	}

	if err := json.Unmarshal([]byte(items.Raw), &page.Data); err != nil {
		return nil, validationError("invalid response: %w", err)
	}
	if r.IsArray() || page.Total < 0 {
		page.Total = len(page.Data)
	}
	if err := validateValue(page.Data); err != nil {
		return nil, validationError("invalid response: %s", describeValidation(err))
	}
	return page, nil
}

// list fetches a page, retrying up to retries extra times on transient failures
func list[T any](ctx context.Context, c *Client, req Request, params pageParams, retries int) (*Page[T], error) {
	if req.Query == nil {
		req.Query = make(map[string][]string)
	}
	setInt(req.Query, "skip", params.skip)
	setInt(req.Query, "take", params.take)

	var raw []byte
	var err error
	for attempt := 0; ; attempt++ {
		raw, err = c.do(ctx, req)
		if err == nil || attempt >= retries || !retryable(err) {
			break
		}

		c.backend.metrics.IncRetry(resourceOf(req.Path))
		c.backend.log.WithFields(logrus.Fields{
			"path":    req.Path,
			"attempt": attempt + 1,
		}).Info("Retrying backend listing")

		wait := c.backend.backoff << attempt
		select {
		case <-ctx.Done():
			return nil, networkError(ctx.Err())
		case <-time.After(wait):
		}
	}
	if err != nil {
		return nil, err
	}
	return normalizePage[T](raw, params, c.backend.defaultTake)
}

func setString(q map[string][]string, key, value string) {
	if value != "" {
		q[key] = []string{value}
	}
}

func setInt(q map[string][]string, key string, value int) {
	if value != 0 {
		q[key] = []string{strconv.Itoa(value)}
	}
}

func setBool(q map[string][]string, key string, value bool) {
	if value {
		q[key] = []string{"true"}
	}
}
