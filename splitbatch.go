package jsonrpc

import (
	"bytes"
	"errors"
)

// SplitBatch scans a JSON-RPC batch payload (a top-level JSON array) and
// returns the raw byte range of each element without decoding it. Unlike
// BatchRequest.UnmarshalJSON (which requires every element to already be a
// well-formed Request), SplitBatch only needs brace/bracket and
// string-escape awareness, so it can split a batch that mixes Requests,
// Notifications, Responses and Errors - the shape a transport sees on the
// wire before it knows which kind each element is.
func SplitBatch(data []byte) ([][]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("invalid batch: expected JSON array")
	}

	var elements [][]byte
	depth := 0
	inString := false
	escaped := false
	start := -1

	i := 1 // skip leading '['
	for ; i < len(trimmed); i++ {
		b := trimmed[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
			if start == -1 {
				start = i
			}
		case '{', '[':
			if depth == 0 && start == -1 {
				start = i
			}
			depth++
		case '}', ']':
			if b == ']' && depth == 0 {
				// closing bracket of the outer array
				if start != -1 {
					elements = append(elements, bytes.TrimSpace(trimmed[start:i]))
					start = -1
				}
				goto done
			}
			depth--
			if depth == 0 && start != -1 {
				elements = append(elements, bytes.TrimSpace(trimmed[start:i+1]))
				start = -1
			}
		case ',':
			if depth == 0 && start != -1 {
				elements = append(elements, bytes.TrimSpace(trimmed[start:i]))
				start = -1
			}
		case ' ', '\t', '\n', '\r':
			// skip whitespace between elements
		default:
			if depth == 0 && start == -1 {
				start = i
			}
		}
	}

done:
	if len(elements) == 0 {
		return nil, errors.New("invalid batch: empty array")
	}
	return elements, nil
}
