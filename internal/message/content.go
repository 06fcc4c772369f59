// Package message provides message and content block types exchanged with
// the Agent CLI over the control protocol's conversation stream.
package message

import "encoding/json"

// Block type constants.
const (
	BlockTypeText       = "text"
	BlockTypeThinking   = "thinking"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
)

// ContentBlock represents a block of content within a message.
type ContentBlock interface {
	BlockType() string
}

// Compile-time verification that all content block types implement ContentBlock.
var (
	_ ContentBlock = (*TextBlock)(nil)
	_ ContentBlock = (*ThinkingBlock)(nil)
	_ ContentBlock = (*ToolUseBlock)(nil)
	_ ContentBlock = (*ToolResultBlock)(nil)
)

// TextBlock contains plain text content.
type TextBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// BlockType implements the ContentBlock interface.
func (b *TextBlock) BlockType() string { return BlockTypeText }

// ThinkingBlock contains the agent's intermediate reasoning trace.
type ThinkingBlock struct {
	Type      string `json:"type"`
	Thinking  string `json:"thinking"`
	Signature string `json:"signature"`
}

// BlockType implements the ContentBlock interface.
func (b *ThinkingBlock) BlockType() string { return BlockTypeThinking }

// ToolUseBlock represents the agent invoking a tool.
type ToolUseBlock struct {
	Type  string         `json:"type"`
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

// BlockType implements the ContentBlock interface.
func (b *ToolUseBlock) BlockType() string { return BlockTypeToolUse }

// ToolResultBlock contains the result of a tool execution.
//
//nolint:tagliatelle // Agent CLI uses snake_case for JSON fields
type ToolResultBlock struct {
	Type      string         `json:"type"`
	ToolUseID string         `json:"tool_use_id"`
	Content   []ContentBlock `json:"content,omitempty"`
	IsError   bool           `json:"is_error,omitempty"`
}

// BlockType implements the ContentBlock interface.
func (b *ToolResultBlock) BlockType() string { return BlockTypeToolResult }

// UnmarshalJSON implements json.Unmarshaler for ToolResultBlock.
// A tool result's content arrives as either a bare string or an array of
// nested content blocks; both shapes decode into the same []ContentBlock.
func (b *ToolResultBlock) UnmarshalJSON(data []byte) error {
	type alias ToolResultBlock

	aux := &struct {
		Content json.RawMessage `json:"content,omitempty"`
		*alias
	}{
		alias: (*alias)(b),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	if len(aux.Content) == 0 || string(aux.Content) == "null" {
		return nil
	}

	var text string
	if err := json.Unmarshal(aux.Content, &text); err == nil {
		b.Content = []ContentBlock{&TextBlock{Type: BlockTypeText, Text: text}}
		return nil
	}

	var rawBlocks []json.RawMessage
	if err := json.Unmarshal(aux.Content, &rawBlocks); err != nil {
		return err
	}

	blocks := make([]ContentBlock, 0, len(rawBlocks))

	for _, raw := range rawBlocks {
		block, err := UnmarshalContentBlock(raw)
		if err != nil {
			return err
		}

		blocks = append(blocks, block)
	}

	b.Content = blocks

	return nil
}

// blockDecoders maps a wire "type" discriminator to a function that decodes
// the raw JSON into the concrete block type it names. An unrecognized type
// falls back to decoding as plain text rather than failing the whole
// message, since the CLI may add new block kinds the SDK doesn't know yet.
var blockDecoders = map[string]func(data []byte) (ContentBlock, error){
	BlockTypeText: func(data []byte) (ContentBlock, error) {
		var block TextBlock
		err := json.Unmarshal(data, &block)
		return &block, err
	},
	BlockTypeThinking: func(data []byte) (ContentBlock, error) {
		var block ThinkingBlock
		err := json.Unmarshal(data, &block)
		return &block, err
	},
	BlockTypeToolUse: func(data []byte) (ContentBlock, error) {
		var block ToolUseBlock
		err := json.Unmarshal(data, &block)
		return &block, err
	},
	BlockTypeToolResult: func(data []byte) (ContentBlock, error) {
		var block ToolResultBlock
		err := json.Unmarshal(data, &block)
		return &block, err
	},
}

// UnmarshalContentBlock unmarshals a single content block from JSON,
// dispatching on its "type" field.
func UnmarshalContentBlock(data []byte) (ContentBlock, error) {
	var typeHolder struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &typeHolder); err != nil {
		return nil, err
	}

	decode, ok := blockDecoders[typeHolder.Type]
	if !ok {
		decode = blockDecoders[BlockTypeText]
	}

	return decode(data)
}
