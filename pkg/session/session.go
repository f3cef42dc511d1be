// Package session implements the navigation state machine for a single
// reader moving through a story graph.
//
// A Session owns the current node key, the progress flag, and the
// reader's inventory. It has no rendering knowledge: the view layer
// asks for the effective choice list and reports selections back.
package session

import (
	"errors"
	"fmt"

	"github.com/migueltarga/kiddo-engine/pkg/inventory"
	"github.com/migueltarga/kiddo-engine/pkg/story"
)

// ErrNoNode is returned when a transition targets a node key that does
// not exist in the story. The session cannot recover a dangling
// reference; callers treat it as "exit to the library".
var ErrNoNode = errors.New("node not found")

// ChoiceView is one entry of the effective choice list for the current
// node, in declared order. Disabled choices are shown but must not be
// selectable; enforcing non-clickability is the rendering layer's job.
type ChoiceView struct {
	Choice   story.Choice
	Disabled bool
}

// Session tracks a reader's position in one story.
type Session struct {
	story     *story.Story
	inventory *inventory.Inventory

	current      string
	progressMade bool
}

// New creates a session for the given story. The inventory is owned by
// the caller so the UI can hang an add-notification hook on it.
func New(s *story.Story, inv *inventory.Inventory) *Session {
	return &Session{story: s, inventory: inv}
}

// Start reseeds the inventory from the story's initial items and
// enters the start node. It is also how a finished story restarts.
func (sn *Session) Start() error {
	sn.progressMade = false
	if sn.story.HasInventory {
		sn.inventory.Initialize(sn.story.InitialInventory)
	} else {
		sn.inventory.Clear()
	}
	return sn.EnterNode(sn.story.Start)
}

// Story returns the story this session is reading.
func (sn *Session) Story() *story.Story {
	return sn.story
}

// Inventory returns the session's inventory.
func (sn *Session) Inventory() *inventory.Inventory {
	return sn.inventory
}

// CurrentKey returns the current node key.
func (sn *Session) CurrentKey() string {
	return sn.current
}

// Current returns the current node, or nil before Start.
func (sn *Session) Current() *story.Node {
	if sn.current == "" {
		return nil
	}
	return sn.story.Node(sn.current)
}

// ProgressMade reports whether the reader has left the start node at
// least once. The UI uses it to decide whether leaving the story needs
// confirmation.
func (sn *Session) ProgressMade() bool {
	return sn.progressMade
}

// Terminal reports whether the current node ends the session.
func (sn *Session) Terminal() bool {
	n := sn.Current()
	return n != nil && sn.story.Terminal(n)
}

// EnterNode transitions to key and applies its entry effects.
//
// Entering a node with gives_item grants the item on every entry,
// including re-entries; the shipped story format does not deduplicate
// repeat-visit grants and this port preserves that behavior.
func (sn *Session) EnterNode(key string) error {
	n := sn.story.Node(key)
	if n == nil {
		return fmt.Errorf("%w: %q", ErrNoNode, key)
	}
	sn.current = key
	if key != sn.story.Start {
		sn.progressMade = true
	}

	if sn.story.HasInventory && n.GivesItem != "" {
		sn.grant(n.GivesItem)
	}
	return nil
}

// grant adds the item for id, expanding it through the story's item
// definitions and falling back to a bare id/name pairing when the
// story never defined it. A full inventory drops the grant.
func (sn *Session) grant(id string) {
	item := story.InventoryItem{ID: id, Name: id}
	if def := sn.story.ItemDefinition(id); def != nil {
		item = story.InventoryItem{ID: def.ID, Name: def.Name, Icon: def.IconURL}
	}
	_ = sn.inventory.AddNotify(item)
}

// Choices builds the effective choice list for the current node:
// declared order, hidden-without-item choices filtered out, the rest
// marked disabled when their required item is absent.
func (sn *Session) Choices() []ChoiceView {
	n := sn.Current()
	if n == nil {
		return nil
	}

	var views []ChoiceView
	for _, ch := range n.Choices {
		if sn.story.HasInventory && ch.HiddenWithoutItem && !sn.inventory.Has(ch.RequiredItem) {
			continue
		}
		disabled := false
		if sn.story.HasInventory && ch.RequiredItem != "" {
			disabled = !sn.inventory.Has(ch.RequiredItem)
		}
		views = append(views, ChoiceView{Choice: ch, Disabled: disabled})
	}
	return views
}

// InventoryChoices returns the reader's current items when the node
// offers its inventory as a one-shot choice set, nil otherwise.
func (sn *Session) InventoryChoices() []story.InventoryItem {
	n := sn.Current()
	if n == nil || !n.InventoryChoice || !sn.story.HasInventory {
		return nil
	}
	return sn.inventory.Items()
}

// SelectChoice follows a choice edge: the required item is consumed,
// the choice's gives_item is granted, and the session enters the
// target node. Disabled choices must be filtered by the caller.
func (sn *Session) SelectChoice(cv ChoiceView) error {
	if sn.story.HasInventory && cv.Choice.RequiredItem != "" {
		sn.inventory.Remove(cv.Choice.RequiredItem)
	}
	if sn.story.HasInventory && cv.Choice.GivesItem != "" {
		sn.grant(cv.Choice.GivesItem)
	}
	return sn.EnterNode(cv.Choice.Next)
}

// SelectInventoryItem resolves an inventory-choice node. The selected
// item is removed regardless of outcome; the session branches to the
// node's success path when the item matches, its failure path
// otherwise.
func (sn *Session) SelectInventoryItem(item story.InventoryItem) error {
	n := sn.Current()
	if n == nil || !n.InventoryChoice {
		return fmt.Errorf("%w: no inventory choice at %q", ErrNoNode, sn.current)
	}

	sn.inventory.Remove(item.ID)

	next := n.FailureNext
	if item.ID == n.CorrectItem {
		next = n.SuccessNext
	}
	return sn.EnterNode(next)
}
