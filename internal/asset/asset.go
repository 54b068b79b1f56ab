// Package asset holds the answer record collected by the questionnaire and
// the row layout it is persisted in.
package asset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel is the persisted marker for a value the user declared not applicable.
const Sentinel = "-"

// DateLayout is the day.month.year layout used for input and persisted rows.
const DateLayout = "02.01.2006"

// Field names a single answer slot written by a step.
type Field string

const (
	FieldCategory     Field = "category"
	FieldSubcategory  Field = "subcategory"
	FieldName         Field = "name"
	FieldQuantity     Field = "quantity"
	FieldCurrency     Field = "currency"
	FieldEntryPrice   Field = "entry_price"
	FieldEntryDate    Field = "entry_date"
	FieldExitDate     Field = "exit_date"
	FieldExitPrice    Field = "exit_price"
	FieldImage        Field = "image"
	FieldRepeat       Field = "repeat"
	FieldContactName  Field = "contact_name"
	FieldContactEmail Field = "contact_email"
	FieldContactPhone Field = "contact_phone"
)

// Date is a calendar day or the not-applicable marker.
type Date struct {
	Day time.Time
	NA  bool
}

// String renders the date in DateLayout, or Sentinel.
func (d Date) String() string {
	if d.NA {
		return Sentinel
	}
	return d.Day.Format(DateLayout)
}

// Price is a positive amount or the not-applicable marker.
type Price struct {
	Amount float64
	NA     bool
}

// String renders the amount without trailing zeros, or Sentinel.
func (p Price) String() string {
	if p.NA {
		return Sentinel
	}
	return FormatAmount(p.Amount)
}

// FormatAmount renders a number the way it is written to the table.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Draft is the per-asset part of the answers. Nil pointers and empty strings mean "not answered yet".
type Draft struct {
	Category    string
	Subcategory string
	Name        string
	Quantity    *float64
	Currency    string
	EntryPrice  *float64
	EntryDate   *Date
	ExitDate    *Date
	ExitPrice   *Price
	Image       *string
}

// Contact is shared by every asset submitted in one session.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Answers accumulates everything a user entered during one session.
type Answers struct {
	Draft   Draft
	Contact Contact
	// More records the last repeat decision.
	More bool
	// Completed keeps drafts finished via "add another" until submission.
	Completed []Draft
}

// Set stores a validated value under the given field.
func (a *Answers) Set(f Field, v any) error {
	switch f {
	case FieldCategory:
		return setString(&a.Draft.Category, f, v)
	case FieldSubcategory:
		return setString(&a.Draft.Subcategory, f, v)
	case FieldName:
		return setString(&a.Draft.Name, f, v)
	case FieldCurrency:
		return setString(&a.Draft.Currency, f, v)
	case FieldContactName:
		return setString(&a.Contact.Name, f, v)
	case FieldContactEmail:
		return setString(&a.Contact.Email, f, v)
	case FieldContactPhone:
		return setString(&a.Contact.Phone, f, v)
	case FieldQuantity:
		return setFloat(&a.Draft.Quantity, f, v)
	case FieldEntryPrice:
		return setFloat(&a.Draft.EntryPrice, f, v)
	case FieldEntryDate, FieldExitDate:
		d, ok := v.(Date)
		if !ok {
			return typeError(f, v)
		}
		if f == FieldEntryDate {
			a.Draft.EntryDate = &d
		} else {
			a.Draft.ExitDate = &d
		}
		return nil
	case FieldExitPrice:
		p, ok := v.(Price)
		if !ok {
			return typeError(f, v)
		}
		a.Draft.ExitPrice = &p
		return nil
	case FieldImage:
		s, ok := v.(string)
		if !ok {
			return typeError(f, v)
		}
		a.Draft.Image = &s
		return nil
	case FieldRepeat:
		s, ok := v.(string)
		if !ok {
			return typeError(f, v)
		}
		a.More = s == "yes"
		return nil
	}
	return fmt.Errorf("asset: unknown field %q", f)
}

// StartNext parks the current draft in Completed and begins an empty one.
// Contact answers are kept.
func (a *Answers) StartNext() {
	a.Completed = append(a.Completed, a.Draft.clone())
	a.Draft = Draft{}
	a.More = false
}

// Count returns the number of assets collected so far, including the one in progress if started.
func (a *Answers) Count() int {
	n := len(a.Completed)
	if a.Draft.Category != "" || a.Draft.Subcategory != "" {
		n++
	}
	return n
}

// Clone returns a deep copy that shares no pointers with a.
func (a Answers) Clone() Answers {
	out := a
	out.Draft = a.Draft.clone()
	if a.Completed != nil {
		out.Completed = make([]Draft, len(a.Completed))
		for i, d := range a.Completed {
			out.Completed[i] = d.clone()
		}
	}
	return out
}

func (d Draft) clone() Draft {
	out := d
	if d.Quantity != nil {
		v := *d.Quantity
		out.Quantity = &v
	}
	if d.EntryPrice != nil {
		v := *d.EntryPrice
		out.EntryPrice = &v
	}
	if d.EntryDate != nil {
		v := *d.EntryDate
		out.EntryDate = &v
	}
	if d.ExitDate != nil {
		v := *d.ExitDate
		out.ExitDate = &v
	}
	if d.ExitPrice != nil {
		v := *d.ExitPrice
		out.ExitPrice = &v
	}
	if d.Image != nil {
		v := *d.Image
		out.Image = &v
	}
	return out
}

// Missing lists required draft fields that have no answer.
func (d Draft) Missing() []Field {
	var out []Field
	if strings.TrimSpace(d.Category) == "" {
		out = append(out, FieldCategory)
	}
	if strings.TrimSpace(d.Subcategory) == "" {
		out = append(out, FieldSubcategory)
	}
	if strings.TrimSpace(d.Name) == "" {
		out = append(out, FieldName)
	}
	if d.Quantity == nil || *d.Quantity <= 0 {
		out = append(out, FieldQuantity)
	}
	if d.Currency == "" {
		out = append(out, FieldCurrency)
	}
	if d.EntryPrice == nil || *d.EntryPrice <= 0 {
		out = append(out, FieldEntryPrice)
	}
	if d.EntryDate == nil {
		out = append(out, FieldEntryDate)
	}
	if d.ExitDate == nil {
		out = append(out, FieldExitDate)
	}
	if d.ExitPrice == nil {
		out = append(out, FieldExitPrice)
	}
	if d.Image == nil {
		out = append(out, FieldImage)
	}
	return out
}

func setString(dst *string, f Field, v any) error {
	s, ok := v.(string)
	if !ok {
		return typeError(f, v)
	}
	*dst = s
	return nil
}

func setFloat(dst **float64, f Field, v any) error {
	n, ok := v.(float64)
	if !ok {
		return typeError(f, v)
	}
	*dst = &n
	return nil
}

func typeError(f Field, v any) error {
	return fmt.Errorf("asset: field %q does not accept %T", f, v)
}
