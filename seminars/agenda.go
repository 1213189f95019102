package seminars

import "github.com/google/uuid"

// AgendaSection is a section with its topic tree.
type AgendaSection struct {
	Section
	Topics []*AgendaTopic `json:"topics"`
}

// AgendaTopic is a topic with its subtopics.
type AgendaTopic struct {
	Topic
	Subtopics []*AgendaTopic `json:"subtopics,omitempty"`
}

// BuildAgenda arranges flat section and topic records into trees. Sections
// keep the order they are given in; topics keep their relative order within
// each parent. A topic whose parent is missing, or sits in another section,
// is shown at the top level so that nothing disappears from the view.
func BuildAgenda(sections []Section, topics []Topic) []AgendaSection {
	nodes := make(map[uuid.UUID]*AgendaTopic, len(topics))
	for i := range topics {
		nodes[topics[i].ID] = &AgendaTopic{Topic: topics[i]}
	}

	roots := make(map[uuid.UUID][]*AgendaTopic, len(sections))
	for i := range topics {
		node := nodes[topics[i].ID]
		if parent := parentNode(nodes, node); parent != nil {
			parent.Subtopics = append(parent.Subtopics, node)
			continue
		}
		roots[node.SectionID] = append(roots[node.SectionID], node)
	}

	agenda := make([]AgendaSection, 0, len(sections))
	for _, section := range sections {
		agenda = append(agenda, AgendaSection{
			Section: section,
			Topics:  roots[section.ID],
		})
	}

	return agenda
}

func parentNode(nodes map[uuid.UUID]*AgendaTopic, node *AgendaTopic) *AgendaTopic {
	if node.ParentTopicID == nil || *node.ParentTopicID == node.ID {
		return nil
	}
	parent, ok := nodes[*node.ParentTopicID]
	if !ok || parent.SectionID != node.SectionID {
		return nil
	}
	return parent
}
