package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spec-kit/parking-service/internal/domain"
)

type legacyMeta struct {
	TotalItems   int `json:"totalItems"`
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
}

type pageShape struct {
	Data  json.RawMessage `json:"data"`
	Items json.RawMessage `json:"items"`
	Total *int            `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Meta  *legacyMeta     `json:"meta"`
}

var errUnknownEnvelope = errors.New("unrecognised list envelope")

// decodePage accepts {data:{items,total}}, {items,total}, {data:[...],meta:{totalItems}} and a bare array.
func decodePage[T any](raw []byte) (domain.Page[T], error) {
	raw = bytes.TrimSpace(raw)
	if isArray(raw) {
		items, err := decodeItems[T](raw)
		if err != nil {
			return domain.Page[T]{}, err
		}
		return domain.Page[T]{Items: items, Total: len(items)}, nil
	}

	var shape pageShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return domain.Page[T]{}, fmt.Errorf("decode list: %w", err)
	}

	switch {
	case isArray(shape.Data):
		items, err := decodeItems[T](shape.Data)
		if err != nil {
			return domain.Page[T]{}, err
		}
		page := domain.Page[T]{Items: items, Total: len(items)}
		if shape.Meta != nil {
			page.Total = shape.Meta.TotalItems
			page.Page = shape.Meta.CurrentPage
			page.Limit = shape.Meta.ItemsPerPage
		}
		return page, nil
	case len(shape.Data) > 0 && !isNull(shape.Data):
		return decodePage[T](shape.Data)
	case len(shape.Items) > 0:
		items, err := decodeItems[T](shape.Items)
		if err != nil {
			return domain.Page[T]{}, err
		}
		page := domain.Page[T]{Items: items, Total: len(items), Page: shape.Page, Limit: shape.Limit}
		if shape.Total != nil {
			page.Total = *shape.Total
		}
		return page, nil
	}
	return domain.Page[T]{}, errUnknownEnvelope
}

func decodeItems[T any](raw json.RawMessage) ([]T, error) {
	items := []T{}
	if isNull(raw) {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// decodeOne unwraps {data: X} when present, otherwise decodes the body itself.
func decodeOne(raw []byte, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	var shape struct {
		Data json.RawMessage `json:"data"`
	}
	if raw[0] == '{' {
		if err := json.Unmarshal(raw, &shape); err == nil && len(shape.Data) > 0 && !isNull(shape.Data) {
			raw = shape.Data
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func isArray(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
