package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/humidistat/pkg/link"
)

// ParseExpr converts tokens to bytes. Tokens starting with 0x are single
// bytes in hex, any other token is taken as ASCII with surrounding quotes
// removed.
func ParseExpr(tokens []string) ([]byte, error) {
	var out []byte
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
			v, err := strconv.ParseUint(tok[2:], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid byte %q: %w", tok, err)
			}
			out = append(out, byte(v))
			continue
		}
		if len(tok) >= 2 && (tok[0] == '"' || tok[0] == '\'') && tok[len(tok)-1] == tok[0] {
			tok = tok[1 : len(tok)-1]
		}
		out = append(out, tok...)
	}
	return out, nil
}

// EncodeExpr builds a frame from tokens. The first byte is the command,
// the checksum is inserted after it and the terminator appended.
func EncodeExpr(tokens []string) ([]byte, error) {
	data, err := ParseExpr(tokens)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("command byte required")
	}
	return link.Encode(data[0], data[1:]), nil
}
