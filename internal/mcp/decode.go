package mcp

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/dinos/internal/codec"
	"github.com/hpungsan/dinos/internal/dino"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// decode unmarshals MCP request arguments into a typed struct.
// Avoids unsafe type assertions and handles JSON decoding safely.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// decodeRecords validates raw record arguments. A nil slice (argument
// omitted) selects the sample collection; an explicit empty array does not.
func decodeRecords(raws []jsoniter.RawMessage) ([]dino.Dino, error) {
	if raws == nil {
		return dino.Sample(), nil
	}
	out := make([]dino.Dino, 0, len(raws))
	for i, raw := range raws {
		d, err := codec.DecodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}
