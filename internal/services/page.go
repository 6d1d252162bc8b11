package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

const (
	// PageSizeAll requests every record in one page.
	PageSizeAll = -1

	allPageSize = 1000
)

type ListParams struct {
	PageNumber int
	PageSize   int
	SearchTerm string
	Filters    map[string]string
}

// Values encodes the params as the backend's query string. Zero values are
// left out.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.PageNumber > 0 {
		v.Set("pageNumber", strconv.Itoa(p.PageNumber))
	}
	switch {
	case p.PageSize == PageSizeAll:
		v.Set("pageSize", strconv.Itoa(allPageSize))
	case p.PageSize > 0:
		v.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.SearchTerm != "" {
		v.Set("searchTerm", p.SearchTerm)
	}
	for key, value := range p.Filters {
		if value != "" {
			v.Set(key, value)
		}
	}
	return v
}

type Metadata struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	PageSize    int  `json:"pageSize"`
	TotalCount  int  `json:"totalCount"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// Page is a list response. The backend answers either with a bare array or
// with an object holding metadata and one array field, whose name depends on
// the resource (items, students, courses, reports).
type Page[T any] struct {
	Items    []T      `json:"items"`
	Metadata Metadata `json:"metadata"`
}

var preferredItemKeys = []string{"items", "data", "results"}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '[' {
		if err := json.Unmarshal(data, &p.Items); err != nil {
			return fmt.Errorf("decode list: %w", err)
		}
		p.Metadata = Metadata{CurrentPage: 1, TotalPages: 1, PageSize: len(p.Items), TotalCount: len(p.Items)}
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode page: %w", err)
	}
	if raw, ok := fields["metadata"]; ok {
		if err := json.Unmarshal(raw, &p.Metadata); err != nil {
			return fmt.Errorf("decode page metadata: %w", err)
		}
	}
	raw, ok := itemsField(fields)
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, &p.Items); err != nil {
		return fmt.Errorf("decode page items: %w", err)
	}
	return nil
}

func itemsField(fields map[string]json.RawMessage) (json.RawMessage, bool) {
	for _, key := range preferredItemKeys {
		if raw, ok := fields[key]; ok && isArray(raw) {
			return raw, true
		}
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if key != "metadata" && isArray(fields[key]) {
			return fields[key], true
		}
	}
	return nil, false
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
