package chainz

import (
	"fmt"
	"os"
	"strings"
)

// Separator is the rule placed after the title and between node fragments.
var Separator = "\n" + strings.Repeat("-", 60) + "\n"

// Extractor produces the documentation fragment for one node.
type Extractor func(Node) string

// NodeInfo describes one node of a pipeline without running it.
type NodeInfo struct {
	ID     string `json:"id" yaml:"id"`
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
	Doc    Doc    `json:"doc,omitempty" yaml:"doc,omitempty"`
	Index  int    `json:"index" yaml:"index"`
}

// Schema returns a NodeInfo for every node in order.
func (p *Pipeline) Schema() []NodeInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	infos := make([]NodeInfo, len(p.nodes))
	for i, n := range p.nodes {
		infos[i] = describe(i, n)
	}
	return infos
}

func describe(index int, n Node) NodeInfo {
	info := NodeInfo{Index: index, ID: NodeID(n)}
	if isNilNode(n) {
		return info
	}
	info.Input = inputType(n).Name()
	info.Output = outputType(n).Name()
	if d, ok := n.(Documented); ok {
		info.Doc = d.Doc()
	}
	return info
}

// DefaultExtractor renders the node's declared signature followed by its
// structured description in a fenced block under a "## <id>" heading.
func DefaultExtractor(n Node) string {
	info := describe(0, n)
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n```\n", info.ID)
	fmt.Fprintf(&b, "@annotation: process(data: %s) -> %s\n", info.Input, info.Output)
	for _, field := range []struct{ tag, value string }{
		{"func", info.Doc.Func},
		{"desc", info.Doc.Desc},
		{"input", info.Doc.Input},
		{"output", info.Doc.Output},
	} {
		if field.value == "" {
			continue
		}
		fmt.Fprintf(&b, "@%s: %s\n", field.tag, strings.TrimSpace(field.value))
	}
	b.WriteString("```")
	return b.String()
}

// Document renders the documentation artifact: a title line with the
// pipeline name, the separator, then one fragment per node joined by the
// separator. A nil extractor means DefaultExtractor. No record is processed
// and identical pipelines produce identical output.
func (p *Pipeline) Document(extractor Extractor) string {
	if extractor == nil {
		extractor = DefaultExtractor
	}
	nodes := p.Nodes()
	fragments := make([]string, len(nodes))
	for i, n := range nodes {
		fragments[i] = extractor(n)
	}
	return "# " + p.name + "\n" + Separator + strings.Join(fragments, Separator)
}

// Doc writes Document(extractor) to exportPath, replacing any existing file.
func (p *Pipeline) Doc(exportPath string, extractor Extractor) error {
	if err := os.WriteFile(exportPath, []byte(p.Document(extractor)), 0o644); err != nil {
		return fmt.Errorf("chainz: export doc %s: %w", exportPath, err)
	}
	return nil
}
