package main

import (
	"math/rand/v2"
	"slices"
)

// Pair is one ground-truth left→right mapping.
type Pair struct {
	Left  string `json:"left" yaml:"left"`
	Right string `json:"right" yaml:"right"`
}

// Connection is a proposed mapping from a left index to a right index.
type Connection struct {
	LeftIdx  int `json:"leftIdx"`
	RightIdx int `json:"rightIdx"`
}

// Matching holds the state of the label-matching exercise.
// It is not safe for concurrent use; sessions serialise access.
type Matching struct {
	question    string
	pairs       []Pair
	left        []string
	right       []string
	selected    int // -1 when nothing is selected
	connections []Connection
	result      Result

	layout *Layout
	lines  []ConnectorLine
}

// MatchingView is the JSON view state sent to the browser.
type MatchingView struct {
	Question     string          `json:"question"`
	Left         []string        `json:"left"`
	Right        []string        `json:"right"`
	SelectedLeft *int            `json:"selected_left"`
	Connections  []Connection    `json:"connections"`
	Lines        []ConnectorLine `json:"lines"`
	Result       Result          `json:"result"`
}

// NewMatching builds a matching exercise with the right column shuffled.
func NewMatching(question string, pairs []Pair, rng *rand.Rand) *Matching {
	rights := make([]string, len(pairs))
	for i, p := range pairs {
		rights[i] = p.Right
	}
	return newMatchingWithOrder(question, pairs, Shuffle(rng, rights))
}

func newMatchingWithOrder(question string, pairs []Pair, right []string) *Matching {
	left := make([]string, len(pairs))
	for i, p := range pairs {
		left[i] = p.Left
	}
	return &Matching{
		question: question,
		pairs:    slices.Clone(pairs),
		left:     left,
		right:    right,
		selected: -1,
	}
}

// SelectLeft toggles the selection of left item idx.
func (m *Matching) SelectLeft(idx int) bool {
	if idx < 0 || idx >= len(m.left) {
		return false
	}
	if m.selected == idx {
		m.selected = -1
	} else {
		m.selected = idx
	}
	m.result = ResultNone
	return true
}

// SelectRight connects the selected left item to right item idx. Attempts
// reusing an already connected left or right item are dropped silently.
func (m *Matching) SelectRight(idx int) bool {
	if m.selected < 0 || idx < 0 || idx >= len(m.right) {
		return false
	}
	for _, c := range m.connections {
		if c.LeftIdx == m.selected || c.RightIdx == idx {
			return false
		}
	}
	m.connections = append(m.connections, Connection{LeftIdx: m.selected, RightIdx: idx})
	m.selected = -1
	m.result = ResultNone
	m.requestRecompute()
	return true
}

// Remove deletes the connection equal to c and clears the result. It
// reports whether the view changed.
func (m *Matching) Remove(c Connection) bool {
	n := len(m.connections)
	prev := m.result
	m.connections = slices.DeleteFunc(m.connections, func(x Connection) bool { return x == c })
	m.result = ResultNone
	if len(m.connections) == n {
		return prev != ResultNone
	}
	m.requestRecompute()
	return true
}

// Verify checks every connection against the ground truth. All left items
// must be connected for a correct outcome.
func (m *Matching) Verify() Result {
	if len(m.connections) != len(m.pairs) {
		m.result = ResultError
		return m.result
	}
	for _, c := range m.connections {
		if m.right[c.RightIdx] != m.expectedRight(m.left[c.LeftIdx]) {
			m.result = ResultError
			return m.result
		}
	}
	m.result = ResultCorrect
	return m.result
}

func (m *Matching) expectedRight(left string) string {
	for _, p := range m.pairs {
		if p.Left == left {
			return p.Right
		}
	}
	return ""
}

// Reset clears connections, selection and result.
func (m *Matching) Reset() {
	m.connections = nil
	m.selected = -1
	m.result = ResultNone
	m.requestRecompute()
}

// SetLayout records the latest element geometry and recomputes the lines.
func (m *Matching) SetLayout(l Layout) {
	m.layout = &l
	m.requestRecompute()
}

// requestRecompute refreshes the connector lines from the last known layout.
// Without a layout every line is degenerate.
func (m *Matching) requestRecompute() {
	var l Layout
	if m.layout != nil {
		l = *m.layout
	}
	m.lines = ComputeLines(m.connections, l)
}

// Lines returns the derived connector lines.
func (m *Matching) Lines() []ConnectorLine {
	return slices.Clone(m.lines)
}

// View returns a copy of the state for rendering.
func (m *Matching) View() MatchingView {
	v := MatchingView{
		Question:    m.question,
		Left:        slices.Clone(m.left),
		Right:       slices.Clone(m.right),
		Connections: append([]Connection{}, m.connections...),
		Lines:       append([]ConnectorLine{}, m.lines...),
		Result:      m.result,
	}
	if m.selected >= 0 {
		sel := m.selected
		v.SelectedLeft = &sel
	}
	return v
}
