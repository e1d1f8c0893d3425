package matchproto

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrUnknownType   = errors.New("unknown match message type")
	ErrMalformedBody = errors.New("malformed match body")
)

// DecodeError reports why a match body could not be decoded.
// errors.Is matches it against ErrUnknownType or ErrMalformedBody.
type DecodeError struct {
	Kind     error
	TypeName string
	Err      error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.TypeName != "" {
		msg += " (" + e.TypeName + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(typeName string, err error) *DecodeError {
	return &DecodeError{Kind: ErrMalformedBody, TypeName: typeName, Err: err}
}

// hexLiteral matches a packed 32-bit address. The word boundary keeps longer
// literals out, so those fail to parse instead of being half-rewritten.
var hexLiteral = regexp.MustCompile(`0x[a-fA-F0-9]{8}\b`)

// Decode parses a raw match body. It never panics on hostile input; every
// failure is a *DecodeError.
func Decode(raw string) (Message, error) {
	if len(raw) == 0 || raw[0] != '[' {
		return nil, malformed("", errors.New("body must start with '['"))
	}

	comma := strings.IndexByte(raw, ',')
	if comma == -1 {
		return nil, malformed("", errors.New("missing type separator"))
	}
	typeName := strings.TrimSpace(raw[1:comma])

	rest := strings.TrimSpace(raw[comma+1:])
	if !strings.HasSuffix(rest, "]") {
		return nil, malformed(typeName, errors.New("missing closing ']'"))
	}
	body := strings.TrimSpace(rest[:len(rest)-1])

	// The game sends its field list in brackets: ["Player":"x"]
	if len(body) >= 2 && body[0] == '[' && body[len(body)-1] == ']' {
		body = "{" + body[1:len(body)-1] + "}"
	}

	body = rewriteHex(body)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, malformed(typeName, err)
	}
	if fields == nil {
		return nil, malformed(typeName, errors.New("body is not an object"))
	}

	msg, err := decodeKind(Kind(typeName), []byte(body))
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func decodeKind(kind Kind, body []byte) (Message, error) {
	switch kind {
	case KindUpdateMyPlayerData:
		var m UpdateMyPlayerData
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, malformed(string(kind), err)
		}
		return m, nil
	case KindUpdatePlayersInRoom:
		var m UpdatePlayersInRoom
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, malformed(string(kind), err)
		}
		return m, nil
	case KindCreateRoom:
		var m CreateRoom
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, malformed(string(kind), err)
		}
		return m, nil
	case KindFindBestRoom:
		return FindBestRoom{}, nil
	default:
		return nil, &DecodeError{Kind: ErrUnknownType, TypeName: string(kind)}
	}
}

// rewriteHex replaces each 0xHHHHHHHH literal with its unsigned decimal value
func rewriteHex(body string) string {
	return hexLiteral.ReplaceAllStringFunc(body, func(lit string) string {
		v, err := strconv.ParseUint(lit[2:], 16, 32)
		if err != nil {
			return lit
		}
		return strconv.FormatUint(v, 10)
	})
}

// okEnvelope is the status element every successful response starts with
const okEnvelope = `{"StatusCode":200}`

// EncodeOK renders the success envelope. A nil payload produces the bare
// [{"StatusCode":200}] form; otherwise the payload follows as a second element.
func EncodeOK(payload any) ([]byte, error) {
	if payload == nil {
		return []byte("[" + okEnvelope + "]"), nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode match payload: %w", err)
	}

	out := make([]byte, 0, len(okEnvelope)+len(data)+3)
	out = append(out, '[')
	out = append(out, okEnvelope...)
	out = append(out, ',')
	out = append(out, data...)
	out = append(out, ']')
	return out, nil
}
