package tallysync

// Tally wraps export payloads as ENVELOPE -> BODY -> DATA -> COLLECTION, but
// depending on the request type and Tally version each level may be absent,
// a single object, or an array, and key casing varies. The navigator absorbs
// all of that; a nil result means "zero records", never an error.

var (
	envelopeKeys   = []string{"ENVELOPE", "Envelope", "envelope"}
	bodyKeys       = []string{"BODY", "Body", "body"}
	dataKeys       = []string{"DATA", "Data", "data"}
	collectionKeys = []string{"COLLECTION", "Collection", "collection"}
)

func lookupKey(node map[string]any, spellings []string) (any, bool) {
	for _, k := range spellings {
		if v, ok := node[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// asNodeMap resolves a value to a map, taking the first element when the
// level was serialized as an array.
func asNodeMap(v any) map[string]any {
	switch n := v.(type) {
	case map[string]any:
		return n
	case []any:
		if len(n) == 0 {
			return nil
		}
		return asNodeMap(n[0])
	default:
		return nil
	}
}

// LocateCollection digs the COLLECTION node out of a parsed response
// document. When DATA is an array, every element is scanned for one holding
// a COLLECTION key and the first match wins.
func LocateCollection(doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}

	envelope := doc
	if v, ok := lookupKey(doc, envelopeKeys); ok {
		if m := asNodeMap(v); m != nil {
			envelope = m
		}
	}

	body := envelope
	if v, ok := lookupKey(envelope, bodyKeys); ok {
		if m := asNodeMap(v); m != nil {
			body = m
		}
	}

	data, ok := lookupKey(body, dataKeys)
	if !ok {
		// Some responses skip the DATA level entirely.
		data = body
	}

	switch d := data.(type) {
	case map[string]any:
		return collectionFrom(d)
	case []any:
		for _, el := range d {
			if m := asNodeMap(el); m != nil {
				if coll := collectionFrom(m); coll != nil {
					return coll
				}
			}
		}
	}
	return nil
}

func collectionFrom(node map[string]any) map[string]any {
	v, ok := lookupKey(node, collectionKeys)
	if !ok {
		return nil
	}
	return asNodeMap(v)
}
