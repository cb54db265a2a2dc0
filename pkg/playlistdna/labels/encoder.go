// Package labels one-hot encodes categorical playlist labels.
package labels

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Encoder maps categories to columns in sorted unique order.
type Encoder struct {
	categories []string
	index      map[string]int
}

// Fit builds an encoder from the unique values, sorted.
func Fit(values []string) (*Encoder, error) {
	if len(values) == 0 {
		return nil, errors.New("no labels to encode")
	}
	seen := make(map[string]struct{}, len(values))
	cats := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		cats = append(cats, v)
	}
	sort.Strings(cats)
	return FromCategories(cats)
}

// FromCategories restores an encoder from a previously fitted category list.
func FromCategories(categories []string) (*Encoder, error) {
	if len(categories) == 0 {
		return nil, errors.New("empty category list")
	}
	e := &Encoder{
		categories: append([]string(nil), categories...),
		index:      make(map[string]int, len(categories)),
	}
	for i, c := range e.categories {
		if _, dup := e.index[c]; dup {
			return nil, fmt.Errorf("duplicate category %q", c)
		}
		e.index[c] = i
	}
	return e, nil
}

// Categories returns the column order.
func (e *Encoder) Categories() []string {
	return append([]string(nil), e.categories...)
}

// Index returns the column of category.
func (e *Encoder) Index(category string) (int, bool) {
	i, ok := e.index[category]
	return i, ok
}

// Transform returns a len(values) x len(categories) one-hot matrix.
func (e *Encoder) Transform(values []string) (*mat.Dense, error) {
	if len(values) == 0 {
		return nil, errors.New("no labels to transform")
	}
	m := mat.NewDense(len(values), len(e.categories), nil)
	for r, v := range values {
		c, ok := e.index[v]
		if !ok {
			return nil, fmt.Errorf("unknown category %q", v)
		}
		m.Set(r, c, 1)
	}
	return m, nil
}

// Encode fits and transforms in one step.
func Encode(values []string) (*mat.Dense, []string, error) {
	e, err := Fit(values)
	if err != nil {
		return nil, nil, err
	}
	m, err := e.Transform(values)
	if err != nil {
		return nil, nil, err
	}
	return m, e.Categories(), nil
}
