// Package parser converts workflow documents into task graphs.
//
// A workflow document is Markdown-shaped: a "## Metadata" section of
// "- key: value" lines, followed by task blocks opened by
// [TASK id="..." depends="..."] markers. Parsing is deterministic and
// performs no I/O beyond reading the input.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/models"
)

// ErrWorkflowNotFound indicates the workflow document path does not exist.
var ErrWorkflowNotFound = errors.New("workflow file not found")

var (
	taskMarkerRegex = regexp.MustCompile(`\[TASK id="([^"]+)" depends="([^"]*)"\]`)
	metadataRegex   = regexp.MustCompile(`(?s)## Metadata\s*\n(.*?)(?:\n##|\z)`)
	titleRegex      = regexp.MustCompile(`(?m)^\s*###\s*(.*)$`)
)

// WorkflowParser parses workflow documents into task graphs.
type WorkflowParser struct {
	markdown goldmark.Markdown
}

// NewWorkflowParser creates a parser instance.
func NewWorkflowParser() *WorkflowParser {
	return &WorkflowParser{
		markdown: goldmark.New(),
	}
}

// ParseFile checks that the document exists, then parses it.
func ParseFile(path string) (*models.TaskGraph, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workflow file: %w", err)
	}
	defer f.Close()

	return NewWorkflowParser().Parse(f)
}

// Parse reads a full workflow document and builds its task graph.
// Parsing is tolerant: malformed metadata lines fall back to a plain
// key/value scan, a missing title is synthesized, and dependency tokens
// naming unknown tasks are recorded but never block scheduling.
func (p *WorkflowParser) Parse(r io.Reader) (*models.TaskGraph, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow content: %w", err)
	}

	graph := models.NewTaskGraph()
	graph.Metadata = p.extractMetadata(string(content))

	for _, block := range splitTaskBlocks(string(content)) {
		task := p.parseTask(block)
		graph.AddTask(task)
	}

	return graph, nil
}

// taskBlock is one [TASK ...] marker plus the body that follows it.
type taskBlock struct {
	id      string
	depends string
	body    string
}

// splitTaskBlocks finds every task marker and slices the document so each
// block's body runs to the next marker or end of input.
func splitTaskBlocks(content string) []taskBlock {
	matches := taskMarkerRegex.FindAllStringSubmatchIndex(content, -1)
	blocks := make([]taskBlock, 0, len(matches))

	for i, m := range matches {
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		blocks = append(blocks, taskBlock{
			id:      content[m[2]:m[3]],
			depends: content[m[4]:m[5]],
			body:    strings.TrimSpace(content[m[1]:end]),
		})
	}

	return blocks
}

// parseTask extracts title, description, dependencies and commands from one
// task block.
func (p *WorkflowParser) parseTask(block taskBlock) *models.TaskDefinition {
	task := &models.TaskDefinition{
		ID:        block.id,
		DependsOn: splitDependencies(block.depends),
	}

	// Title: first ###-level heading inside the body.
	if m := titleRegex.FindStringSubmatch(block.body); m != nil {
		task.Title = strings.TrimSpace(m[1])
	}
	if task.Title == "" {
		task.Title = "Task " + task.ID
	}

	task.Description = extractDescription(block.body)
	task.Commands = p.extractCommands(block.body)

	return task
}

// splitDependencies splits a comma-separated depends attribute, trimming
// each token and discarding empty ones.
func splitDependencies(depends string) []string {
	var deps []string
	for _, tok := range strings.Split(depends, ",") {
		if trimmed := strings.TrimSpace(tok); trimmed != "" {
			deps = append(deps, trimmed)
		}
	}
	return deps
}

// extractDescription returns the body text before the first fence, with the
// title heading stripped. Only the first heading is removed; later headings
// belong to the narrative text.
func extractDescription(body string) string {
	desc := body
	if loc := titleRegex.FindStringIndex(desc); loc != nil {
		desc = desc[:loc[0]] + desc[loc[1]:]
	}
	if idx := strings.Index(desc, "```"); idx >= 0 {
		desc = desc[:idx]
	}
	return strings.TrimSpace(desc)
}

// extractCommands walks the goldmark AST of the task body and collects the
// trimmed, non-blank lines inside every fenced code block, in document
// order. Fence language tags are ignored.
func (p *WorkflowParser) extractCommands(body string) []string {
	// Outdent so fences indented by the document layout still parse as
	// fenced blocks rather than literal text.
	source := []byte(outdent(body))
	doc := p.markdown.Parser().Parse(text.NewReader(source))

	var commands []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimSpace(string(seg.Value(source)))
			if line != "" {
				commands = append(commands, line)
			}
		}
		return ast.WalkContinue, nil
	})

	return commands
}

// outdent removes the common leading space count from every non-blank line.
func outdent(body string) string {
	lines := strings.Split(body, "\n")
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		count := len(line) - len(strings.TrimLeft(line, " "))
		if indent < 0 || count < indent {
			indent = count
		}
	}
	if indent <= 0 {
		return body
	}
	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		}
	}
	return strings.Join(lines, "\n")
}

// extractMetadata parses the "## Metadata" section into key/value pairs.
// The section is "- key: value" lines; bullets are stripped and the result
// parsed as YAML. If YAML parsing fails, a tolerant line scan keeps every
// line containing a colon instead of aborting the parse.
func (p *WorkflowParser) extractMetadata(content string) map[string]string {
	metadata := make(map[string]string)

	m := metadataRegex.FindStringSubmatch(content)
	if m == nil {
		return metadata
	}

	var yamlLines []string
	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		yamlLines = append(yamlLines, strings.TrimPrefix(line, "- "))
	}
	yamlText := strings.Join(yamlLines, "\n")

	// Values stay weakly typed: scalars decode to their literal text.
	var parsed map[string]string
	if err := yaml.Unmarshal([]byte(yamlText), &parsed); err == nil && parsed != nil {
		return parsed
	}

	// Fallback: plain key/value scan.
	for _, line := range yamlLines {
		if key, value, found := strings.Cut(line, ":"); found {
			metadata[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	return metadata
}
