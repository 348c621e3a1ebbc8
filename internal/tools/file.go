package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/haasonsaas/nexuscore/internal/security"
	"github.com/haasonsaas/nexuscore/pkg/models"
)

const defaultMaxReadBytes = 200_000

// FileReadTool reads a file from the workspace with an offset and a byte
// cap, grounded on the teacher's internal/tools/files.ReadTool.
type FileReadTool struct {
	Policy       *security.Policy
	MaxReadBytes int
}

// NewFileReadTool creates a read tool scoped to policy's workspace.
func NewFileReadTool(policy *security.Policy) *FileReadTool {
	return &FileReadTool{Policy: policy, MaxReadBytes: defaultMaxReadBytes}
}

func (t *FileReadTool) Name() string { return "file_read" }

func (t *FileReadTool) Description() string {
	return "Read a file from the workspace with an optional offset and byte limit."
}

func (t *FileReadTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Path to the file, relative to the workspace."},
			"offset": {"type": "integer", "minimum": 0, "description": "Byte offset to start reading from."},
			"max_bytes": {"type": "integer", "minimum": 0, "description": "Maximum bytes to read, capped by the tool default."}
		},
		"required": ["path"]
	}`)
}

func (t *FileReadTool) Execute(args json.RawMessage) models.ToolResult {
	var input struct {
		Path     string `json:"path"`
		Offset   int64  `json:"offset"`
		MaxBytes int    `json:"max_bytes"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return models.ToolResult{Error: fmt.Sprintf("invalid parameters: %v", err)}
	}
	if strings.TrimSpace(input.Path) == "" {
		return models.ToolResult{Error: "path is required"}
	}
	if input.Offset < 0 {
		return models.ToolResult{Error: "offset must be >= 0"}
	}

	resolved, err := t.resolve(input.Path)
	if err != nil {
		return models.ToolResult{Error: err.Error()}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return models.ToolResult{Error: fmt.Sprintf("open file: %v", err)}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return models.ToolResult{Error: fmt.Sprintf("stat file: %v", err)}
	}

	if input.Offset > 0 {
		if _, err := file.Seek(input.Offset, io.SeekStart); err != nil {
			return models.ToolResult{Error: fmt.Sprintf("seek file: %v", err)}
		}
	}

	limit := t.MaxReadBytes
	if limit <= 0 {
		limit = defaultMaxReadBytes
	}
	if input.MaxBytes > 0 && input.MaxBytes < limit {
		limit = input.MaxBytes
	}

	remaining := int64(limit)
	if size := info.Size(); size > 0 {
		remaining = size - input.Offset
		if remaining < 0 {
			remaining = 0
		}
		if remaining > int64(limit) {
			remaining = int64(limit)
		}
	}

	buf, err := io.ReadAll(io.LimitReader(file, remaining))
	if err != nil {
		return models.ToolResult{Error: fmt.Sprintf("read file: %v", err)}
	}

	truncated := info.Size() > 0 && input.Offset+int64(len(buf)) < info.Size()
	result := map[string]any{
		"path":      input.Path,
		"content":   string(buf),
		"offset":    input.Offset,
		"bytes":     len(buf),
		"truncated": truncated,
	}
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return models.ToolResult{Error: fmt.Sprintf("encode result: %v", err)}
	}
	return models.ToolResult{Success: true, Output: string(payload)}
}

func (t *FileReadTool) resolve(path string) (string, error) {
	if t.Policy == nil {
		return filepath.Abs(path)
	}
	return t.Policy.ResolvePath(path)
}

// FileWriteTool writes (or appends to) a file in the workspace, grounded
// on the teacher's internal/tools/files.WriteTool.
type FileWriteTool struct {
	Policy *security.Policy
}

// NewFileWriteTool creates a write tool scoped to policy's workspace.
func NewFileWriteTool(policy *security.Policy) *FileWriteTool {
	return &FileWriteTool{Policy: policy}
}

func (t *FileWriteTool) Name() string { return "file_write" }

func (t *FileWriteTool) Description() string {
	return "Write content to a file in the workspace, overwriting by default."
}

func (t *FileWriteTool) ParametersSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {"type": "string", "description": "Path to write, relative to the workspace."},
			"content": {"type": "string", "description": "File contents to write."},
			"append": {"type": "boolean", "description": "Append instead of overwrite (default false)."}
		},
		"required": ["path", "content"]
	}`)
}

func (t *FileWriteTool) Execute(args json.RawMessage) models.ToolResult {
	var input struct {
		Path    string `json:"path"`
		Content string `json:"content"`
		Append  bool   `json:"append"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return models.ToolResult{Error: fmt.Sprintf("invalid parameters: %v", err)}
	}
	if strings.TrimSpace(input.Path) == "" {
		return models.ToolResult{Error: "path is required"}
	}

	var resolved string
	var err error
	if t.Policy != nil {
		resolved, err = t.Policy.ResolvePath(input.Path)
	} else {
		resolved, err = filepath.Abs(input.Path)
	}
	if err != nil {
		return models.ToolResult{Error: err.Error()}
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return models.ToolResult{Error: fmt.Sprintf("create directory: %v", err)}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if input.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(resolved, flags, 0o644)
	if err != nil {
		return models.ToolResult{Error: fmt.Sprintf("open file: %v", err)}
	}
	defer file.Close()

	n, err := file.WriteString(input.Content)
	if err != nil {
		return models.ToolResult{Error: fmt.Sprintf("write file: %v", err)}
	}

	payload, err := json.MarshalIndent(map[string]any{
		"path":          input.Path,
		"bytes_written": n,
		"append":        input.Append,
	}, "", "  ")
	if err != nil {
		return models.ToolResult{Error: fmt.Sprintf("encode result: %v", err)}
	}
	return models.ToolResult{Success: true, Output: string(payload)}
}
