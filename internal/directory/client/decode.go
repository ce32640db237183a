package client

import (
	"encoding/json"

	"directory-enricher/internal/common/errors"
	"directory-enricher/internal/directory"
)

// The directory service returns the same logical payload in at least two
// shapes: a wrapped object and a bare array. Decoding runs an ordered
// sequence of candidate decoders and keeps the first that matches.

type decodeOutcome int

const (
	decodeOK decodeOutcome = iota
	// decodeSchemaMismatch means valid JSON that does not fit this shape
	decodeSchemaMismatch
	// decodeMalformed means the payload is not valid JSON at all
	decodeMalformed
)

type peopleDecoder func(data []byte) ([]directory.RawEmployeeRecord, decodeOutcome)

type namedListDecoder func(data []byte) (*directory.NamedList, decodeOutcome)

// decodePeople tries the `{employees: [...]}` envelope first, then a
// bare array. Records without an email are dropped, never surfaced as
// partially-valid records.
func decodePeople(data []byte) ([]directory.RawEmployeeRecord, error) {
	decoders := []peopleDecoder{decodePeopleEnvelope, decodePeopleArray}

	sawMalformed := false
	for _, decode := range decoders {
		records, outcome := decode(data)
		switch outcome {
		case decodeOK:
			return dropBlankEmails(records), nil
		case decodeMalformed:
			sawMalformed = true
		}
	}

	if sawMalformed {
		return nil, errors.DecodeError("people payload is not valid JSON", nil)
	}
	return nil, errors.DecodeError("people payload matched no known schema", nil)
}

func decodePeopleEnvelope(data []byte) ([]directory.RawEmployeeRecord, decodeOutcome) {
	var envelope struct {
		Employees []directory.RawEmployeeRecord `json:"employees"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		if !json.Valid(data) {
			return nil, decodeMalformed
		}
		return nil, decodeSchemaMismatch
	}
	if envelope.Employees == nil {
		return nil, decodeSchemaMismatch
	}
	return envelope.Employees, decodeOK
}

func decodePeopleArray(data []byte) ([]directory.RawEmployeeRecord, decodeOutcome) {
	var records []directory.RawEmployeeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		if !json.Valid(data) {
			return nil, decodeMalformed
		}
		return nil, decodeSchemaMismatch
	}
	return records, decodeOK
}

func dropBlankEmails(records []directory.RawEmployeeRecord) []directory.RawEmployeeRecord {
	kept := make([]directory.RawEmployeeRecord, 0, len(records))
	for _, r := range records {
		if directory.NormalizeIdentity(r.Email) == "" {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// decodeNamedList tries the `{name, values: [...]}` wrapper first, then
// a bare item array. The category parameter names the list when the bare
// shape carries no name of its own.
func decodeNamedList(data []byte, category string) (*directory.NamedList, error) {
	decoders := []namedListDecoder{
		decodeNamedListWrapped,
		func(d []byte) (*directory.NamedList, decodeOutcome) {
			return decodeNamedListArray(d, category)
		},
	}

	sawMalformed := false
	for _, decode := range decoders {
		list, outcome := decode(data)
		switch outcome {
		case decodeOK:
			return list, nil
		case decodeMalformed:
			sawMalformed = true
		}
	}

	if sawMalformed {
		return nil, errors.DecodeError("named-list payload is not valid JSON", nil)
	}
	return nil, errors.DecodeError("named-list payload matched no known schema", nil)
}

func decodeNamedListWrapped(data []byte) (*directory.NamedList, decodeOutcome) {
	var list directory.NamedList
	if err := json.Unmarshal(data, &list); err != nil {
		if !json.Valid(data) {
			return nil, decodeMalformed
		}
		return nil, decodeSchemaMismatch
	}
	if list.Items == nil {
		return nil, decodeSchemaMismatch
	}
	return &list, decodeOK
}

func decodeNamedListArray(data []byte, category string) (*directory.NamedList, decodeOutcome) {
	var items []directory.NamedListItem
	if err := json.Unmarshal(data, &items); err != nil {
		if !json.Valid(data) {
			return nil, decodeMalformed
		}
		return nil, decodeSchemaMismatch
	}
	return &directory.NamedList{Name: category, Items: items}, decodeOK
}
