package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/migueltarga/kiddo-engine/pkg/story"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.json> [more.json ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &StoryValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type StoryValidator struct {
	errors []string
}

func (v *StoryValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("story file must have .json extension: %s", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	s, err := story.Parse(data)
	if err != nil {
		return fmt.Errorf("file %s failed to parse: %w", filename, err)
	}

	v.errors = nil
	v.validateStory(s)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *StoryValidator) validateStory(s *story.Story) {
	if s.Node(s.Start) == nil {
		v.addError(fmt.Sprintf("start node '%s' does not exist", s.Start))
	}

	for key, node := range s.Nodes {
		v.validateNode(s, key, &node)
	}

	for _, item := range s.InitialInventory {
		if item.Empty() {
			v.addError("initial inventory contains an item with empty id")
		}
	}
}

func (v *StoryValidator) validateNode(s *story.Story, key string, node *story.Node) {
	if !balancedMarkup(node.Text) {
		v.addError(fmt.Sprintf("node '%s' has an unclosed [img] tag", key))
	}

	v.validateItemRef(s, fmt.Sprintf("node '%s' gives_item", key), node.GivesItem)

	if node.InventoryChoice {
		if !s.HasInventory {
			v.addError(fmt.Sprintf("node '%s' uses inventory_choice but story has no inventory", key))
		}
		v.validateItemRef(s, fmt.Sprintf("node '%s' correct_item", key), node.CorrectItem)
		v.validateNodeRef(s, fmt.Sprintf("node '%s' success_next", key), node.SuccessNext)
		v.validateNodeRef(s, fmt.Sprintf("node '%s' failure_next", key), node.FailureNext)
		if node.SuccessNext == "" && node.FailureNext == "" && !node.End {
			v.addError(fmt.Sprintf("node '%s' is an inventory choice with no outgoing branch", key))
		}
	}

	for i, choice := range node.Choices {
		context := fmt.Sprintf("node '%s' choice %d", key, i)
		if choice.Next == "" && !node.End {
			v.addError(fmt.Sprintf("%s has no next node", context))
		}
		v.validateNodeRef(s, context+" next", choice.Next)
		v.validateItemRef(s, context+" required_item", choice.RequiredItem)
		v.validateItemRef(s, context+" gives_item", choice.GivesItem)
	}
}

func (v *StoryValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *StoryValidator) validateNodeRef(s *story.Story, context, key string) {
	if key == "" {
		return
	}
	if s.Node(key) == nil {
		v.addError(fmt.Sprintf("%s references unknown node '%s'", context, key))
	}
}

func (v *StoryValidator) validateItemRef(s *story.Story, context, id string) {
	if id == "" {
		return
	}
	if !s.HasInventory {
		v.addError(fmt.Sprintf("%s references item '%s' but story has no inventory", context, id))
		return
	}
	if s.ItemDefinition(id) == nil {
		v.addError(fmt.Sprintf("%s references undefined item '%s'", context, id))
	}
}

// balancedMarkup reports whether every [img] opener in text has a
// matching closer. The reader renders an unclosed opener as literal
// text, which is almost always an authoring mistake.
func balancedMarkup(text string) bool {
	for {
		open := strings.Index(text, "[img]")
		if open < 0 {
			return true
		}
		rest := text[open+len("[img]"):]
		end := strings.Index(rest, "[/img]")
		if end < 0 {
			return false
		}
		text = rest[end+len("[/img]"):]
	}
}
