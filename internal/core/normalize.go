package core

import (
	"encoding/json"
	"strconv"
)

// NormalizeRawItems decodes a loosely typed JSON array (local draft or
// server payload) into well-formed line items. Anything that is not an
// array falls back to defaults; non-object entries are dropped; ids are
// synthesized when missing; amounts keep their string form; the detail
// toggle is forced shut for locked and rent-labeled items. An empty
// result also falls back to defaults.
func NormalizeRawItems(raw json.RawMessage, defaults func() []LineItem) []LineItem {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return defaults()
	}

	items := make([]LineItem, 0, len(entries))
	for _, e := range entries {
		// Only object entries survive; nulls and scalars drop out
		// without poisoning the rest of the array.
		var entry map[string]any
		if err := json.Unmarshal(e, &entry); err != nil || entry == nil {
			continue
		}
		item := LineItem{
			ID:          stringField(entry["id"]),
			Label:       labelField(entry["label"], len(items)),
			Amount:      amountField(entry["amount"]),
			Details:     normalizeRawDetails(entry["details"]),
			LockDetails: boolField(entry["lockDetails"]),
			ShowDetails: boolField(entry["showDetails"]),
		}
		if item.ID == "" {
			item.ID = NewID()
		}
		if item.DetailsLocked() {
			item.ShowDetails = false
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return defaults()
	}
	return items
}

// NormalizeItems applies the same shaping rules to already-typed items.
func NormalizeItems(items []LineItem, defaults func() []LineItem) []LineItem {
	normalized := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = NewID()
		}
		details := make([]DetailItem, 0, len(item.Details))
		for _, d := range item.Details {
			if d.ID == "" {
				d.ID = NewID()
			}
			details = append(details, d)
		}
		item.Details = details
		if item.DetailsLocked() {
			item.ShowDetails = false
		}
		normalized = append(normalized, item)
	}
	if len(normalized) == 0 {
		return defaults()
	}
	return normalized
}

func normalizeRawDetails(value any) []DetailItem {
	entries, ok := value.([]any)
	if !ok {
		return []DetailItem{}
	}
	details := make([]DetailItem, 0, len(entries))
	for _, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok || obj == nil {
			continue
		}
		d := DetailItem{
			ID:     stringField(obj["id"]),
			Label:  stringField(obj["label"]),
			Amount: amountField(obj["amount"]),
		}
		if d.ID == "" {
			d.ID = NewID()
		}
		details = append(details, d)
	}
	return details
}

func stringField(value any) string {
	s, _ := value.(string)
	return s
}

func labelField(value any, idx int) string {
	if s, ok := value.(string); ok {
		return s
	}
	return "Row " + strconv.Itoa(idx+1)
}

// amountField keeps numbers and strings as strings, everything else
// becomes empty. Mirrors how the form fields hold amounts as text.
func amountField(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func boolField(value any) bool {
	b, _ := value.(bool)
	return b
}
