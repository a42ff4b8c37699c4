package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawRecord is a row as it arrives on the wire. Columns may hold strings,
// numbers, booleans or null.
type RawRecord map[string]any

// Column names of the upstream feed.
const (
	ColDate          = "data"
	ColLine          = "linha"
	ColLineType      = "tipolinha"
	ColTripType      = "tipoviagem"
	ColPassengerType = "tipopassageiro"
	ColHour          = "hora"
	ColName          = "nome"
	ColCompany       = "empresa"
	ColPassengerLine = "linhapassageiro"
)

// Clean converts a raw row into a Record applying the coercion rules of the
// dashboard: dates parse as dd/mm/yyyy, a null line type becomes empty and is
// trimmed, a null trip type becomes UndefinedTripType.
func (r RawRecord) Clean() Record {
	rec := Record{
		Date:          ParseDate(r.str(ColDate)),
		Line:          r.str(ColLine),
		PassengerType: r.str(ColPassengerType),
		Hour:          r.str(ColHour),
		Name:          r.str(ColName),
		Company:       r.str(ColCompany),
		PassengerLine: r.str(ColPassengerLine),
		LineType:      strings.TrimSpace(r.str(ColLineType)),
	}
	if rec.HasDate() {
		rec.DateLabel = rec.Date.Format(LabelLayout)
	}
	if tt, ok := r.value(ColTripType); ok {
		rec.TripType = tt
	} else {
		rec.TripType = UndefinedTripType
	}
	return rec
}

// CleanAll converts every raw row.
func CleanAll(rows []RawRecord) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Clean())
	}
	return out
}

func (r RawRecord) str(col string) string {
	s, _ := r.value(col)
	return s
}

// value returns the string form of a column and false when the column is
// missing or null.
func (r RawRecord) value(col string) (string, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
