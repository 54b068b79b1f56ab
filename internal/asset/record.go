package asset

import (
	"fmt"
	"strings"
)

// Header is the first row of an empty table. Column order matches Record.Row.
var Header = []string{
	"Категория",
	"Подкатегория",
	"Название актива",
	"Количество",
	"Валюта",
	"Дата входа/покупки",
	"Цена входа/покупки",
	"Дата выхода/продажи",
	"Цена выхода/продажи",
	"Ссылка на изображение",
	"Контактное лицо",
	"Email",
	"Телефон",
	"Отправитель",
}

// Record is one persisted asset row.
type Record struct {
	Category     string
	Subcategory  string
	Name         string
	Quantity     float64
	Currency     string
	EntryDate    Date
	EntryPrice   float64
	ExitDate     Date
	ExitPrice    Price
	Image        string
	ContactName  string
	ContactEmail string
	ContactPhone string
	Submitter    string
}

// Row returns the record's cells in Header order.
func (r Record) Row() []string {
	return []string{
		r.Category,
		r.Subcategory,
		r.Name,
		FormatAmount(r.Quantity),
		r.Currency,
		r.EntryDate.String(),
		FormatAmount(r.EntryPrice),
		r.ExitDate.String(),
		r.ExitPrice.String(),
		r.Image,
		r.ContactName,
		r.ContactEmail,
		r.ContactPhone,
		r.Submitter,
	}
}

// IncompleteError reports required answers missing when records are assembled.
type IncompleteError struct {
	Index  int
	Fields []Field
}

func (e *IncompleteError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("asset %d is incomplete: missing %s", e.Index+1, strings.Join(names, ", "))
}

// Records assembles one record per completed draft plus the current one.
func Records(a Answers, submitter string) ([]Record, error) {
	var missingContact []Field
	if strings.TrimSpace(a.Contact.Name) == "" {
		missingContact = append(missingContact, FieldContactName)
	}
	if a.Contact.Email == "" {
		missingContact = append(missingContact, FieldContactEmail)
	}
	if a.Contact.Phone == "" {
		missingContact = append(missingContact, FieldContactPhone)
	}

	drafts := append(append([]Draft(nil), a.Completed...), a.Draft)
	out := make([]Record, 0, len(drafts))
	for i, d := range drafts {
		missing := append(d.Missing(), missingContact...)
		if len(missing) > 0 {
			return nil, &IncompleteError{Index: i, Fields: missing}
		}
		img := *d.Image
		if img == Sentinel {
			img = ""
		}
		out = append(out, Record{
			Category:     d.Category,
			Subcategory:  d.Subcategory,
			Name:         d.Name,
			Quantity:     *d.Quantity,
			Currency:     d.Currency,
			EntryDate:    *d.EntryDate,
			EntryPrice:   *d.EntryPrice,
			ExitDate:     *d.ExitDate,
			ExitPrice:    *d.ExitPrice,
			Image:        img,
			ContactName:  a.Contact.Name,
			ContactEmail: a.Contact.Email,
			ContactPhone: a.Contact.Phone,
			Submitter:    submitter,
		})
	}
	return out, nil
}
