package eventstore

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"focis/internal/domain"
)

// ErrChainBroken is returned by VerifyChain when a stored hash does not match
// the event content or its predecessor.
var ErrChainBroken = errors.New("event hash chain broken")

// hashedFields is the immutable part of an event. Reversal marks are
// excluded so that voiding an event does not break the chain.
type hashedFields struct {
	ID         string          `json:"id"`
	Seq        uint64          `json:"seq"`
	Kind       domain.Kind     `json:"type"`
	FactoryID  string          `json:"factoryId"`
	RecordedAt string          `json:"recordedAt"`
	OccurredAt string          `json:"occurredAt"`
	UserID     string          `json:"userId"`
	EntityID   string          `json:"entityId"`
	Location   string          `json:"location"`
	Details    json.RawMessage `json:"details"`
}

func eventHash(e domain.Event) (string, error) {
	details := e.Details
	if len(details) == 0 {
		details = json.RawMessage("null")
	}
	data, err := json.Marshal(hashedFields{
		ID:         e.ID,
		Seq:        e.Seq,
		Kind:       e.Kind,
		FactoryID:  e.FactoryID,
		RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339Nano),
		OccurredAt: e.OccurredAt.UTC().Format(time.RFC3339Nano),
		UserID:     e.UserID,
		EntityID:   e.EntityID,
		Location:   e.Location,
		Details:    details,
	})
	if err != nil {
		return "", fmt.Errorf("hash event %s: %w", e.ID, err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func chainHash(prev, hash string) string {
	sum := blake2b.Sum256([]byte(prev + hash))
	return hex.EncodeToString(sum[:])
}

// seal fills Hash and ChainHash for e given the previous chain hash.
func seal(e *domain.Event, prev string) error {
	h, err := eventHash(*e)
	if err != nil {
		return err
	}
	e.Hash = h
	e.ChainHash = chainHash(prev, h)
	return nil
}

// VerifyChain recomputes every hash in append order. Events without a hash
// (written before sealing existed) restart the chain at the next sealed event.
func VerifyChain(events []domain.Event) error {
	prev := ""
	for _, e := range events {
		if e.Hash == "" {
			prev = ""
			continue
		}
		h, err := eventHash(e)
		if err != nil {
			return err
		}
		if h != e.Hash {
			return fmt.Errorf("%w: content of %s altered", ErrChainBroken, e.ID)
		}
		if chainHash(prev, h) != e.ChainHash {
			return fmt.Errorf("%w: %s does not follow its predecessor", ErrChainBroken, e.ID)
		}
		prev = e.ChainHash
	}
	return nil
}
