package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPayload is returned for drag payloads that cannot be decoded.
// Drops carrying such payloads are ignored.
var ErrMalformedPayload = errors.New("malformed drag payload")

// SourceKind tells where a dragged letter comes from.
type SourceKind int

const (
	FromBank SourceKind = iota
	FromSlot
)

// DragPayload is the message carried by one drag gesture.
type DragPayload struct {
	Letter string
	Source SourceKind
	Index  int // bank index or slot index, depending on Source
}

// BankPayload builds the payload for a letter dragged from the bank.
func BankPayload(letter string, bankIdx int) DragPayload {
	return DragPayload{Letter: letter, Source: FromBank, Index: bankIdx}
}

// SlotPayload builds the payload for a letter dragged from a slot.
func SlotPayload(letter string, slotIdx int) DragPayload {
	return DragPayload{Letter: letter, Source: FromSlot, Index: slotIdx}
}

// wirePayload is the JSON transfer string set on the browser drag event.
type wirePayload struct {
	Letter  string `json:"letter"`
	Source  string `json:"source"`
	BankIdx *int   `json:"bankIdx,omitempty"`
	SlotIdx *int   `json:"slotIdx,omitempty"`
}

// Encode returns the transfer string for the payload.
func (p DragPayload) Encode() string {
	w := wirePayload{Letter: p.Letter}
	idx := p.Index
	switch p.Source {
	case FromBank:
		w.Source = "bank"
		w.BankIdx = &idx
	case FromSlot:
		w.Source = "slot:" + strconv.Itoa(idx)
		w.SlotIdx = &idx
	}
	b, _ := json.Marshal(w)
	return string(b)
}

// ParsePayload decodes a transfer string. For slot sources an explicit
// slotIdx wins over the index embedded in "slot:<n>".
func ParsePayload(raw string) (DragPayload, error) {
	if strings.TrimSpace(raw) == "" {
		return DragPayload{}, fmt.Errorf("%w: empty", ErrMalformedPayload)
	}

	var w wirePayload
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return DragPayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if w.Letter == "" {
		return DragPayload{}, fmt.Errorf("%w: missing letter", ErrMalformedPayload)
	}

	switch {
	case w.Source == "bank":
		if w.BankIdx == nil {
			return DragPayload{}, fmt.Errorf("%w: missing bankIdx", ErrMalformedPayload)
		}
		return BankPayload(w.Letter, *w.BankIdx), nil

	case strings.HasPrefix(w.Source, "slot:"):
		if w.SlotIdx != nil {
			return SlotPayload(w.Letter, *w.SlotIdx), nil
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(w.Source, "slot:"))
		if err != nil {
			return DragPayload{}, fmt.Errorf("%w: bad slot source %q", ErrMalformedPayload, w.Source)
		}
		return SlotPayload(w.Letter, idx), nil
	}

	return DragPayload{}, fmt.Errorf("%w: unknown source %q", ErrMalformedPayload, w.Source)
}
