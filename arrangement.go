package main

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Result is the outcome of a verify action. The zero value means "not verified".
type Result string

const (
	ResultNone    Result = ""
	ResultCorrect Result = "correct"
	ResultError   Result = "error"
)

// Slot is one ordered position of the arrangement exercise.
type Slot struct {
	ID     string  `json:"id"`
	Letter *string `json:"letter"`
}

// Arrangement holds the state of the letter-arrangement exercise.
// It is not safe for concurrent use; sessions serialise access.
type Arrangement struct {
	words     []string
	wordIndex int
	target    string
	slots     []Slot
	bank      []string
	result    Result
	rng       *rand.Rand
}

// ArrangementView is the JSON view state sent to the browser.
type ArrangementView struct {
	Word      string   `json:"word"`
	WordIndex int      `json:"word_index"`
	Slots     []Slot   `json:"slots"`
	Bank      []string `json:"bank"`
	Result    Result   `json:"result"`
}

// NewArrangement starts an arrangement exercise on the first word.
func NewArrangement(words []string, rng *rand.Rand) *Arrangement {
	a := &Arrangement{
		words: append([]string(nil), words...),
		rng:   rng,
	}
	a.resetForWord(0)
	return a
}

func (a *Arrangement) resetForWord(index int) {
	a.wordIndex = index
	a.target = a.words[index]
	letters := splitLetters(a.target)
	a.slots = make([]Slot, len(letters))
	for i := range a.slots {
		a.slots[i] = Slot{ID: fmt.Sprintf("slot-%d", i)}
	}
	a.bank = Shuffle(a.rng, letters)
	a.result = ResultNone
}

func splitLetters(word string) []string {
	runes := []rune(word)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

// Target returns the word being assembled.
func (a *Arrangement) Target() string { return a.target }

// Place moves the dragged letter into the empty slot slotIdx.
// It reports whether the state changed; an occupied target drops the drag.
func (a *Arrangement) Place(p DragPayload, slotIdx int) bool {
	if slotIdx < 0 || slotIdx >= len(a.slots) || a.slots[slotIdx].Letter != nil {
		return false
	}

	switch p.Source {
	case FromBank:
		if p.Index < 0 || p.Index >= len(a.bank) || a.bank[p.Index] != p.Letter {
			return false
		}
		a.bank = append(a.bank[:p.Index], a.bank[p.Index+1:]...)
	case FromSlot:
		if !a.slotHolds(p.Index, p.Letter) {
			return false
		}
		a.slots[p.Index].Letter = nil
	default:
		return false
	}

	letter := p.Letter
	a.slots[slotIdx].Letter = &letter
	a.result = ResultNone
	return true
}

// ReturnToBank appends a letter dragged out of a slot to the bank.
// Drags that start in the bank are ignored.
func (a *Arrangement) ReturnToBank(p DragPayload) bool {
	if p.Source != FromSlot || !a.slotHolds(p.Index, p.Letter) {
		return false
	}
	a.slots[p.Index].Letter = nil
	a.bank = append(a.bank, p.Letter)
	a.result = ResultNone
	return true
}

func (a *Arrangement) slotHolds(idx int, letter string) bool {
	if idx < 0 || idx >= len(a.slots) {
		return false
	}
	l := a.slots[idx].Letter
	return l != nil && *l == letter
}

// Assembled concatenates slot letters, empty slots contributing nothing.
func (a *Arrangement) Assembled() string {
	var sb strings.Builder
	for _, s := range a.slots {
		if s.Letter != nil {
			sb.WriteString(*s.Letter)
		}
	}
	return sb.String()
}

// Verify compares the assembled slots with the target word.
func (a *Arrangement) Verify() Result {
	assembled := a.Assembled()
	if len(assembled) != len(a.target) || assembled != a.target {
		a.result = ResultError
	} else {
		a.result = ResultCorrect
	}
	return a.result
}

// Clear moves every placed letter back to the bank and reshuffles it.
func (a *Arrangement) Clear() {
	back := make([]string, 0, len(a.slots))
	for i := range a.slots {
		if a.slots[i].Letter != nil {
			back = append(back, *a.slots[i].Letter)
			a.slots[i].Letter = nil
		}
	}
	a.bank = Shuffle(a.rng, append(a.bank, back...))
	a.result = ResultNone
}

// Next cycles to the following sample word and resets everything.
func (a *Arrangement) Next() {
	a.resetForWord((a.wordIndex + 1) % len(a.words))
}

// View returns a deep copy of the state for rendering.
func (a *Arrangement) View() ArrangementView {
	slots := make([]Slot, len(a.slots))
	for i, s := range a.slots {
		slots[i] = Slot{ID: s.ID}
		if s.Letter != nil {
			l := *s.Letter
			slots[i].Letter = &l
		}
	}
	return ArrangementView{
		Word:      a.target,
		WordIndex: a.wordIndex,
		Slots:     slots,
		Bank:      append([]string{}, a.bank...),
		Result:    a.result,
	}
}
