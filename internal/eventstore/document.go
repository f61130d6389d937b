package eventstore

import (
	"context"
	"encoding/json"
	"fmt"

	"focis/internal/domain"
)

// BlobStore persists the ledger document as one opaque value.
// Load returns nil, nil when nothing has been saved yet.
type BlobStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Document is the persisted state: every event plus the master data registry.
type Document struct {
	Events []domain.Event `json:"events"`
	domain.MasterData
}

func (d Document) clone() Document {
	return Document{
		Events:     append([]domain.Event(nil), d.Events...),
		MasterData: d.MasterData.Clone(),
	}
}

func (d Document) lastSeq() uint64 {
	if len(d.Events) == 0 {
		return 0
	}
	return d.Events[len(d.Events)-1].Seq
}

func (d Document) lastChainHash() string {
	if len(d.Events) == 0 {
		return ""
	}
	return d.Events[len(d.Events)-1].ChainHash
}

func (d Document) indexOf(id string) int {
	for i := range d.Events {
		if d.Events[i].ID == id {
			return i
		}
	}
	return -1
}

func decodeDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	// Documents written before sequence numbers existed get them in load order.
	for i := range doc.Events {
		if doc.Events[i].Seq == 0 {
			doc.Events[i].Seq = uint64(i + 1)
		}
	}
	return doc, nil
}

func encodeDocument(doc Document) ([]byte, error) {
	if doc.Events == nil {
		doc.Events = []domain.Event{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}
