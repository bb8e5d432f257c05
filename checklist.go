package atlasportal

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ChecklistItem is a single task in a deployment checklist.
type ChecklistItem struct {
	Text string
	Done bool
}

// Checklist is the parsed form of a markdown deployment checklist. Only task
// list items ("- [ ]" / "- [x]") are collected; surrounding prose is ignored.
type Checklist struct {
	Items []ChecklistItem
}

// ParseChecklist parses a markdown deployment checklist into its task items.
func ParseChecklist(content string) (Checklist, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.TaskList))
	source := []byte(content)
	doc := md.Parser().Parse(text.NewReader(source))

	var checklist Checklist

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		item, ok := node.(*ast.ListItem)
		if !ok {
			return ast.WalkContinue, nil
		}

		box, text := taskItemParts(item, source)
		if box == nil {
			return ast.WalkContinue, nil
		}

		checklist.Items = append(checklist.Items, ChecklistItem{
			Text: text,
			Done: box.IsChecked,
		})

		// Nested task items under this one are collected on their own walk
		// visits, so only this item's own text block is read here.
		return ast.WalkContinue, nil
	})
	if err != nil {
		return Checklist{}, fmt.Errorf("failed to walk checklist ast: %w", err)
	}

	return checklist, nil
}

// Complete reports whether every task in the checklist is done. An empty
// checklist is complete.
func (c Checklist) Complete() bool {
	for _, item := range c.Items {
		if !item.Done {
			return false
		}
	}
	return true
}

// Remaining returns the text of every task not yet done, in document order.
func (c Checklist) Remaining() []string {
	remaining := []string{}
	for _, item := range c.Items {
		if !item.Done {
			remaining = append(remaining, item.Text)
		}
	}
	return remaining
}

// taskItemParts finds the checkbox in a list item's own text block and
// gathers the text of the sibling inlines. The raw "[x]" marker lives in the
// checkbox node's segment, so skipping that node keeps it out of the text.
func taskItemParts(item *ast.ListItem, source []byte) (*east.TaskCheckBox, string) {
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if _, ok := child.(*ast.List); ok {
			continue
		}

		var box *east.TaskCheckBox
		var text strings.Builder
		for inline := child.FirstChild(); inline != nil; inline = inline.NextSibling() {
			if b, ok := inline.(*east.TaskCheckBox); ok {
				box = b
				continue
			}
			text.Write(inline.Text(source))
		}

		if box != nil {
			return box, strings.TrimSpace(text.String())
		}
	}
	return nil, ""
}
