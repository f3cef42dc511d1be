// Package story defines the story document model and its JSON parser.
//
// A story is a directed graph of text nodes joined by choices, with an
// optional set of collectible item definitions that gate or unlock
// branches. Stories are parsed once from JSON and immutable afterwards.
package story

// Choice is a labeled edge from one node to another.
type Choice struct {
	Text              string `json:"text"`
	Next              string `json:"next"`
	RequiredItem      string `json:"required_item,omitempty"`
	GivesItem         string `json:"gives_item,omitempty"`
	HiddenWithoutItem bool   `json:"hidden_without_item,omitempty"`
}

// Node is one narrative beat. Choice order is display order.
//
// A node may additionally run in inventory-choice mode: the reader
// picks an item from their inventory and transitions to SuccessNext
// when it matches CorrectItem, FailureNext otherwise.
type Node struct {
	Text      string   `json:"text"`
	End       bool     `json:"end,omitempty"`
	Choices   []Choice `json:"choices,omitempty"`
	GivesItem string   `json:"gives_item,omitempty"`

	InventoryChoice bool   `json:"inventory_choice,omitempty"`
	CorrectItem     string `json:"correct_item,omitempty"`
	SuccessNext     string `json:"success_next,omitempty"`
	FailureNext     string `json:"failure_next,omitempty"`
}

// ItemDefinition is a catalog entry for a collectible item.
type ItemDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"icon_url,omitempty"`
	LocalIcon   string `json:"local_icon,omitempty"`
}

// InventoryItem is a live, held item reference.
type InventoryItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Empty reports whether the item is an empty slot.
func (i InventoryItem) Empty() bool {
	return i.ID == ""
}

// Story is a complete branching narrative document.
type Story struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Start            string          `json:"start"`
	Language         string          `json:"lang,omitempty"`
	HasInventory     bool            `json:"has_inventory,omitempty"`
	ItemDefinitions  []ItemDefinition
	InitialInventory []InventoryItem
	Nodes            map[string]Node
}

// Node returns the node for key, or nil if the key is dangling.
func (s *Story) Node(key string) *Node {
	n, ok := s.Nodes[key]
	if !ok {
		return nil
	}
	return &n
}

// ItemDefinition returns the definition for id, or nil when the story
// does not define it.
func (s *Story) ItemDefinition(id string) *ItemDefinition {
	for i := range s.ItemDefinitions {
		if s.ItemDefinitions[i].ID == id {
			return &s.ItemDefinitions[i]
		}
	}
	return nil
}

// Terminal reports whether n ends the session: either an explicit end
// marker or a node with no outgoing choices.
func (s *Story) Terminal(n *Node) bool {
	return n.End || len(n.Choices) == 0
}
