// Package ledger talks to the distributed-ledger command-line tools. The
// tools are external processes with loosely structured output, so this package
// is deliberately defensive: it extracts what it can, maps unknown fields to
// zero values, and keeps a hard line between "the tool ran and said no" and
// "the tool could not run".
package ledger

import "encoding/json"

// Document is one row reported by the listing tool: the ledger's view of a
// document anchored for an identity. It is ephemeral; rebuilt on every query
// and never cached across requests, because the ledger is the source of truth
// and may change underneath us.
type Document struct {
	DocID         string
	Title         string
	IssuingEntity string
	FilePath      string
	SizeBytes     int64
	CreatedAt     string
}

// toDocument maps one parsed JSON object into a Document. Missing or
// unexpectedly typed fields become zero values; an optional field can never
// fail the whole listing.
func toDocument(raw map[string]json.RawMessage) Document {
	return Document{
		DocID:         stringField(raw, "docId"),
		Title:         stringField(raw, "title"),
		IssuingEntity: stringField(raw, "issuingEntity"),
		FilePath:      stringField(raw, "filePath"),
		SizeBytes:     intField(raw, "sizeBytes"),
		CreatedAt:     stringField(raw, "createdAt"),
	}
}

func stringField(raw map[string]json.RawMessage, key string) string {
	msg, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s
	}
	// Some tool versions emit bare numbers where strings are expected.
	var n json.Number
	if err := json.Unmarshal(msg, &n); err == nil {
		return n.String()
	}
	return ""
}

func intField(raw map[string]json.RawMessage, key string) int64 {
	msg, ok := raw[key]
	if !ok {
		return 0
	}
	var n int64
	if err := json.Unmarshal(msg, &n); err == nil {
		return n
	}
	// Tolerate quoted numbers.
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		var qn json.Number
		if err := json.Unmarshal([]byte(s), &qn); err == nil {
			if v, err := qn.Int64(); err == nil {
				return v
			}
		}
	}
	return 0
}
