package story

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingRequired is returned when a story document lacks a
// non-empty id or start node key.
var ErrMissingRequired = errors.New("story is missing required id or start")

// storyDoc mirrors the raw story document format. Parsing goes through
// this intermediate so the exported Story never carries half-validated
// state: a document either becomes a complete Story or is rejected.
type storyDoc struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Start            string             `json:"start"`
	Lang             string             `json:"lang"`
	HasInventory     bool               `json:"has_inventory"`
	ItemDefinitions  []ItemDefinition   `json:"item_definitions"`
	InitialInventory []initialItemDoc   `json:"initial_inventory"`
	Nodes            map[string]nodeDoc `json:"nodes"`
}

type initialItemDoc struct {
	ID string `json:"id"`
}

type nodeDoc struct {
	Text      string   `json:"text"`
	End       bool     `json:"end"`
	Choices   []Choice `json:"choices"`
	GivesItem string   `json:"gives_item"`

	InventoryChoice bool   `json:"inventory_choice"`
	CorrectItem     string `json:"correct_item"`
	SuccessNext     string `json:"success_next"`
	FailureNext     string `json:"failure_next"`
}

// Parse decodes a story JSON document into a Story.
//
// Malformed JSON or a missing/empty id or start rejects the whole
// document. Structurally valid but semantically broken pieces are
// dropped locally instead: choices with empty text are discarded, and
// initial inventory ids with no matching item definition are skipped.
func Parse(data []byte) (*Story, error) {
	var doc storyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode story: %w", err)
	}

	if doc.ID == "" || doc.Start == "" {
		return nil, ErrMissingRequired
	}

	s := &Story{
		ID:           doc.ID,
		Title:        doc.Title,
		Start:        doc.Start,
		Language:     doc.Lang,
		HasInventory: doc.HasInventory,
		Nodes:        make(map[string]Node, len(doc.Nodes)),
	}

	if doc.HasInventory {
		s.ItemDefinitions = doc.ItemDefinitions

		// Definitions are resolved first so initial inventory entries
		// can be expanded into full items. Unresolvable ids are dropped,
		// not fatal.
		for _, entry := range doc.InitialInventory {
			def := s.ItemDefinition(entry.ID)
			if def == nil {
				continue
			}
			s.InitialInventory = append(s.InitialInventory, InventoryItem{
				ID:   def.ID,
				Name: def.Name,
				Icon: def.IconURL,
			})
		}
	}

	for key, nd := range doc.Nodes {
		n := Node{
			Text:            Normalize(nd.Text),
			End:             nd.End,
			GivesItem:       nd.GivesItem,
			InventoryChoice: nd.InventoryChoice,
			CorrectItem:     nd.CorrectItem,
			SuccessNext:     nd.SuccessNext,
			FailureNext:     nd.FailureNext,
		}
		for _, ch := range nd.Choices {
			if ch.Text == "" {
				continue
			}
			n.Choices = append(n.Choices, ch)
		}
		s.Nodes[key] = n
	}

	return s, nil
}
