package contract

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/huangsam/prodscore/schema"
	"gopkg.in/yaml.v3"
)

// TemplateConfigName is the file written by the init command.
const TemplateConfigName = ".prodscore.yaml"

// RenderTemplateConfig returns a commented starter config. Every factor gets
// an equal weight and DefaultBandSlots band rows, of which only the first is filled.
func RenderTemplateConfig() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	addScalar(root, "table", "!!str", "products.csv", "CSV file scored when no path argument is given")

	weight := strconv.FormatFloat(1.0/float64(len(schema.AllFactors)), 'f', -1, 64)
	weights := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range schema.AllFactors {
		addScalar(weights, f.Key(), "!!float", weight, "")
	}
	addNode(root, "weights", weights, "Weight per factor in [0,1]; the weights must sum to 1")

	bands := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range schema.AllFactors {
		slots := &yaml.Node{Kind: yaml.SequenceNode}
		for i := range DefaultBandSlots {
			if i == 0 {
				slots.Content = append(slots.Content, bandNode("0", "100", "50"))
				continue
			}
			slots.Content = append(slots.Content, bandNode("", "", ""))
		}
		addNode(bands, f.Key(), slots, "")
	}
	addNode(root, "bands", bands, "Bands map a factor value in [min, max] to a score; the first match wins.\nRows with a blank field are ignored.")

	addScalar(root, "weight-tolerance", "!!float", strconv.FormatFloat(1e-6, 'g', -1, 64), "Allowed distance of the weight sum from 1 (0 requires an exact sum)")
	addScalar(root, "limit", "!!int", strconv.Itoa(DefaultResultLimit), "Rows shown in the text preview")
	addScalar(root, "output", "!!str", string(schema.TextOut), "text, csv, json or parquet")

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "prodscore configuration\nFlags and PRODSCORE_* environment variables override these values.",
		Content:     []*yaml.Node{root},
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to render template config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to render template config: %w", err)
	}
	return buf.Bytes(), nil
}

func addScalar(m *yaml.Node, key, tag, value, comment string) {
	addNode(m, key, &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}, comment)
}

func addNode(m *yaml.Node, key string, value *yaml.Node, comment string) {
	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key, HeadComment: comment},
		value,
	)
}

func bandNode(minValue, maxValue, score string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for _, kv := range [][2]string{{"min", minValue}, {"max", maxValue}, {"score", score}} {
		tag := "!!str"
		if kv[1] != "" {
			tag = "!!int"
		}
		addScalar(n, kv[0], tag, kv[1], "")
	}
	return n
}
