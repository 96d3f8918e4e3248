package services

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// WorkItemField names an editable column of a work item row.
type WorkItemField string

const (
	FieldDescription WorkItemField = "description"
	FieldBasicRate   WorkItemField = "basic_rate"
	FieldUnit        WorkItemField = "unit"
	FieldQuantity    WorkItemField = "quantity"
	FieldTaxRate     WorkItemField = "tax_rate"
)

// WorkItemFields lists the editable columns in display order.
var WorkItemFields = []WorkItemField{FieldDescription, FieldBasicRate, FieldUnit, FieldQuantity, FieldTaxRate}

// ErrUnknownField is returned by Update for a column that does not exist.
var ErrUnknownField = errors.New("unknown work item field")

// WorkItemList edits an ordered list of work items. Every successful
// mutation hands the new list to onChange before returning.
type WorkItemList struct {
	items    []WorkItem
	onChange func([]WorkItem)
}

// NewWorkItemList wraps items. onChange may be nil.
func NewWorkItemList(items []WorkItem, onChange func([]WorkItem)) *WorkItemList {
	return &WorkItemList{
		items:    slices.Clone(items),
		onChange: onChange,
	}
}

// Items returns a copy of the current list.
func (l *WorkItemList) Items() []WorkItem {
	return slices.Clone(l.items)
}

// Len returns the number of rows.
func (l *WorkItemList) Len() int {
	return len(l.items)
}

// Add appends an empty row with a fresh key and returns it.
func (l *WorkItemList) Add() WorkItem {
	item := WorkItem{Key: uuid.NewString()}
	l.items = append(l.items, item)
	l.notify()
	return item
}

// Update sets one field of the row identified by key. An unknown key is a
// no-op. Numeric fields must parse; on a parse error the list is unchanged.
// A blank quantity clears it.
func (l *WorkItemList) Update(key string, field WorkItemField, value string) error {
	idx := slices.IndexFunc(l.items, func(it WorkItem) bool { return it.Key == key })
	if idx < 0 {
		return nil
	}

	item := l.items[idx]
	value = strings.TrimSpace(value)

	switch field {
	case FieldDescription:
		item.Description = value
	case FieldUnit:
		item.Unit = value
	case FieldBasicRate:
		v, err := ParseAmount(value)
		if err != nil {
			return fmt.Errorf("basic rate: %w", err)
		}
		item.BasicRate = v
	case FieldTaxRate:
		v, err := ParseAmount(value)
		if err != nil {
			return fmt.Errorf("tax rate: %w", err)
		}
		item.TaxRate = v
	case FieldQuantity:
		if value == "" {
			item.Quantity = nil
			break
		}
		v, err := ParseAmount(value)
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		item.Quantity = &v
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	l.items[idx] = item
	l.notify()
	return nil
}

// Remove deletes the row identified by key. Removing the last row is
// allowed; an empty list is rejected later by form validation.
func (l *WorkItemList) Remove(key string) {
	idx := slices.IndexFunc(l.items, func(it WorkItem) bool { return it.Key == key })
	if idx < 0 {
		return
	}
	l.items = slices.Delete(l.items, idx, idx+1)
	l.notify()
}

func (l *WorkItemList) notify() {
	if l.onChange != nil {
		l.onChange(l.Items())
	}
}

// ParseAmount parses a number typed into a form. Blank means zero and
// Indian digit grouping commas are accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "₹")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
