package client

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

const (
	// ResultCodeOK is the single success sentinel in the envelope header.
	ResultCodeOK = "0000"
	// ResultCodeNoData is the upstream "no data" result code.
	ResultCodeNoData = "03"
)

// Header is the envelope header of every TourAPI response.
type Header struct {
	ResultCode string `json:"resultCode"`
	ResultMsg  string `json:"resultMsg"`
}

// Result is a parsed envelope with items normalized to a list.
type Result[T any] struct {
	Header     Header
	Items      []T
	TotalCount int
	PageNo     int
	NumOfRows  int
}

type envelope struct {
	Response *struct {
		Header Header `json:"header"`
		Body   struct {
			Items      json.RawMessage `json:"items"`
			NumOfRows  flexInt         `json:"numOfRows"`
			PageNo     flexInt         `json:"pageNo"`
			TotalCount flexInt         `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

// flexInt accepts both 10 and "10"; the upstream is not consistent.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", data, err)
	}
	*f = flexInt(v)
	return nil
}

// Parse validates the envelope, checks the result code and normalizes items.item,
// which arrives as an array, a bare object, or not at all.
func Parse[T any](body []byte) (*Result[T], error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Response == nil {
		return nil, fmt.Errorf("%w: missing response object", ErrMalformedEnvelope)
	}

	header := env.Response.Header
	if header.ResultCode != ResultCodeOK {
		return nil, &UpstreamError{Code: header.ResultCode, Message: header.ResultMsg}
	}

	items, err := normalizeItems[T](env.Response.Body.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	return &Result[T]{
		Header:     header,
		Items:      items,
		TotalCount: int(env.Response.Body.TotalCount),
		PageNo:     int(env.Response.Body.PageNo),
		NumOfRows:  int(env.Response.Body.NumOfRows),
	}, nil
}

func normalizeItems[T any](raw json.RawMessage) ([]T, error) {
	// An empty result set is serialized as "items": "" rather than being omitted.
	if isBlank(raw) {
		return []T{}, nil
	}

	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("invalid items: %w", err)
	}
	if isBlank(wrapper.Item) {
		return []T{}, nil
	}

	item := bytes.TrimSpace(wrapper.Item)
	if item[0] == '[' {
		var list []T
		if err := json.Unmarshal(item, &list); err != nil {
			return nil, fmt.Errorf("invalid item list: %w", err)
		}
		if list == nil {
			list = []T{}
		}
		return list, nil
	}

	var single T
	if err := json.Unmarshal(item, &single); err != nil {
		return nil, fmt.Errorf("invalid item: %w", err)
	}
	return []T{single}, nil
}

func isBlank(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null" || string(trimmed) == `""`
}
