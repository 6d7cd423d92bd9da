// ABOUTME: Referral tree graph generation
// ABOUTME: Builds a graphviz graph from team members linked to their upline
package viz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
)

// TeamGraph returns DOT source for the referral tree rooted at rootName.
func TeamGraph(ctx context.Context, rootName string, members []models.TeamMember) (string, error) {
	var buf bytes.Buffer
	if err := RenderTeamGraph(ctx, &buf, rootName, members, graphviz.XDOT); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatFor picks an output format from a file name, defaulting to DOT.
func FormatFor(path string) graphviz.Format {
	switch {
	case strings.HasSuffix(path, ".svg"):
		return graphviz.SVG
	case strings.HasSuffix(path, ".png"):
		return graphviz.PNG
	case strings.HasSuffix(path, ".jpg"), strings.HasSuffix(path, ".jpeg"):
		return graphviz.JPG
	}
	return graphviz.XDOT
}

// RenderTeamGraph writes the referral tree to w in the given format.
// Members whose upline is not in the tree hang off the root.
func RenderTeamGraph(ctx context.Context, w io.Writer, rootName string, members []models.TeamMember, f graphviz.Format) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetRankDir(cgraph.TBRank)
	graph.SetLabel(rootName + " referral tree")

	root, err := graph.CreateNodeByName(rootName)
	if err != nil {
		return fmt.Errorf("failed to create root node: %w", err)
	}
	root.SetShape("box")
	root.SetStyle("filled")
	root.SetFillColor("lightblue")

	nodes := map[string]*cgraph.Node{rootName: root}
	for _, m := range members {
		if _, exists := nodes[m.Name]; exists {
			continue
		}
		node, err := graph.CreateNodeByName(m.Name)
		if err != nil {
			return fmt.Errorf("failed to create member node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", m.Name, format.Currency(m.Amount)))
		node.SetStyle("filled")
		if m.Type == models.MemberDirect {
			node.SetFillColor("lightgreen")
		} else {
			node.SetFillColor("lightyellow")
		}
		nodes[m.Name] = node
	}

	for _, m := range members {
		parent, ok := nodes[m.Upline]
		if !ok || m.Upline == m.Name {
			parent = root
		}
		edge, err := graph.CreateEdgeByName(m.ID, parent, nodes[m.Name])
		if err != nil {
			return fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel(m.Type)
		if m.Type == models.MemberIndirect {
			edge.SetStyle("dashed")
		}
	}

	if err := gv.Render(ctx, graph, f, w); err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}
	return nil
}
