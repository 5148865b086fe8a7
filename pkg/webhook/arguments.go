package webhook

import (
	"encoding/json"

	"github.com/go-go-golems/cricket/pkg/webhook/wire"
)

// Arguments indexes the argument records of the current input and resolves
// each record's discriminated-union value.
type Arguments struct {
	raw    []wire.Argument
	byName map[string]wire.Argument
	status map[string]*wire.Status
}

func NewArguments(records []wire.Argument) *Arguments {
	a := &Arguments{
		raw:    records,
		byName: make(map[string]wire.Argument, len(records)),
		status: make(map[string]*wire.Status, len(records)),
	}
	for _, rec := range records {
		a.byName[rec.Name] = rec
		if rec.Status != nil {
			a.status[rec.Name] = rec.Status
		}
	}
	return a
}

// Raw returns the argument records as received.
func (a *Arguments) Raw() []wire.Argument { return a.raw }

// Get resolves the named argument. The second return reports whether a record
// with that name exists at all; the resolved value may still be nil.
func (a *Arguments) Get(name string) (any, bool) {
	rec, ok := a.byName[name]
	if !ok {
		return nil, false
	}
	return ResolveValue(rec), true
}

// Status returns the platform-reported error status for the named argument,
// or nil.
func (a *Arguments) Status(name string) *wire.Status { return a.status[name] }

// ResolveValue picks the populated typed slot out of an argument record.
// Resolution is pure and total: every record resolves to exactly one value,
// possibly nil.
//
// The PERMISSION record is a legacy exception: when no slot is populated its
// bool slot is read anyway, defaulting to false, because the platform
// historically omitted the field for denied grants. Do not extend that
// behavior to other names.
func ResolveValue(rec wire.Argument) any {
	switch {
	case rec.BoolValue != nil:
		return *rec.BoolValue
	case rec.IntValue != nil:
		return *rec.IntValue
	case rec.FloatValue != nil:
		return *rec.FloatValue
	case rec.DatetimeValue != nil:
		return rec.DatetimeValue
	case rec.PlaceValue != nil:
		return rec.PlaceValue
	case len(rec.StructuredValue) > 0:
		return decodeStructured(rec.StructuredValue)
	case len(rec.Extension) > 0:
		return decodeStructured(rec.Extension)
	case rec.TextValue != "":
		return rec.TextValue
	case rec.RawText != "":
		return rec.RawText
	}
	if rec.Name == "PERMISSION" {
		return false
	}
	return nil
}

func decodeStructured(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// Tolerate malformed structured slots the same way normalization
		// tolerates missing ones.
		return nil
	}
	return v
}
