// Package storage provides the in-memory contribution store.
//
// Architecture:
// - map keyed by content hash for O(1) lookup and dedup
// - slice of hashes preserving submission order
// - per-agent index preserving per-agent submission order
//
// The store depends on the agent registry for referential validity: every
// stored contribution references a registered agent.
package storage

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/richinex/concord/agent"
	"github.com/richinex/concord/model"
)

var (
	// ErrEmptyContent is returned when submitted content is empty or
	// whitespace-only.
	ErrEmptyContent = errors.New("empty contribution content")
	// ErrNotFound is returned when one or more contribution hashes are
	// unknown; the wrapped message lists the missing hashes.
	ErrNotFound = errors.New("contribution not found")
	// ErrUnsupportedModality is returned when an agent submits a modality
	// it did not declare at registration.
	ErrUnsupportedModality = errors.New("unsupported modality for agent")
)

// SubmitOptions carries the optional fields of a submission. The zero
// value means: text modality, confidence inherited from the agent's
// baseline, no metadata, timestamp taken from the store clock.
type SubmitOptions struct {
	Modality   model.Modality
	Confidence *float64
	Metadata   map[string]any
	// Timestamp overrides the submission instant. Zero means now. Two
	// byte-identical submissions at the same instant hash identically and
	// are stored once.
	Timestamp time.Time
}

// ContributionStore holds submitted contributions keyed by content hash.
type ContributionStore struct {
	mu       sync.RWMutex
	registry *agent.Registry
	byHash   map[string]model.Contribution
	order    []string            // submission order of hashes
	byAgent  map[string][]string // agent id -> hashes in submission order

	// now is the submission clock; overridable in tests.
	now func() time.Time
}

// NewContributionStore creates a store backed by the given registry.
func NewContributionStore(registry *agent.Registry) *ContributionStore {
	return &ContributionStore{
		registry: registry,
		byHash:   make(map[string]model.Contribution),
		byAgent:  make(map[string][]string),
		now:      time.Now,
	}
}

// SetClock overrides the submission clock. Intended for tests.
func (s *ContributionStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Submit stores a contribution and returns its hash. Resubmission of
// byte-identical content at the same instant is idempotent: the same hash
// is returned and no duplicate entry is created.
func (s *ContributionStore) Submit(agentID, content string, opts SubmitOptions) (string, error) {
	ag, err := s.registry.Get(agentID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: agent %q", ErrEmptyContent, agentID)
	}

	modality := opts.Modality
	if modality == "" {
		modality = model.ModalityText
	}
	if !ag.Supports(modality) {
		return "", fmt.Errorf("%w: agent %q, modality %q", ErrUnsupportedModality, agentID, modality)
	}

	confidence := ag.Confidence
	if opts.Confidence != nil {
		if *opts.Confidence < 0 || *opts.Confidence > 1 {
			return "", fmt.Errorf("contribution confidence %v outside [0,1]", *opts.Confidence)
		}
		confidence = *opts.Confidence
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := opts.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	hash := ContributionHash(agentID, content, ts)
	if _, exists := s.byHash[hash]; exists {
		return hash, nil
	}

	var metadata map[string]any
	if len(opts.Metadata) > 0 {
		metadata = make(map[string]any, len(opts.Metadata))
		for k, v := range opts.Metadata {
			metadata[k] = v
		}
	}

	s.byHash[hash] = model.Contribution{
		AgentID:    agentID,
		Content:    content,
		Modality:   modality,
		Timestamp:  ts,
		Confidence: confidence,
		Metadata:   metadata,
		Hash:       hash,
	}
	s.order = append(s.order, hash)
	s.byAgent[agentID] = append(s.byAgent[agentID], hash)

	return hash, nil
}

// Get returns the contribution with the given hash.
func (s *ContributionStore) Get(hash string) (model.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byHash[hash]
	if !ok {
		return model.Contribution{}, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	return c, nil
}

// All returns a snapshot of every contribution in submission order.
func (s *ContributionStore) All() []model.Contribution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Contribution, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, s.byHash[h])
	}
	return out
}

// Subset returns the contributions for the given hashes in submission
// order. Unknown hashes fail the call; the error lists every missing hash.
func (s *ContributionStore) Subset(hashes []string) ([]model.Contribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]struct{}, len(hashes))
	var missing []string
	for _, h := range hashes {
		if _, ok := s.byHash[h]; !ok {
			missing = append(missing, h)
			continue
		}
		want[h] = struct{}{}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.Join(missing, ", "))
	}

	out := make([]model.Contribution, 0, len(want))
	for _, h := range s.order {
		if _, ok := want[h]; ok {
			out = append(out, s.byHash[h])
		}
	}
	return out, nil
}

// ByAgent returns all contributions for the agent in submission order.
// An unknown or contribution-less agent yields an empty slice, not an
// error.
func (s *ContributionStore) ByAgent(agentID string) []model.Contribution {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := s.byAgent[agentID]
	out := make([]model.Contribution, 0, len(hashes))
	for _, h := range hashes {
		out = append(out, s.byHash[h])
	}
	return out
}

// CountByAgent returns the number of stored contributions for the agent.
func (s *ContributionStore) CountByAgent(agentID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byAgent[agentID])
}

// Len returns the number of stored contributions.
func (s *ContributionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byHash)
}

// Clear empties the contribution set. Agent registrations are untouched.
func (s *ContributionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byHash = make(map[string]model.Contribution)
	s.byAgent = make(map[string][]string)
	s.order = nil
}

// ContributionHash computes the deterministic hash of a submission.
// xxHash is non-cryptographic; the hash serves as a store handle and a
// dedup key, not an integrity check.
func ContributionHash(agentID, content string, ts time.Time) string {
	var d xxhash.Digest
	_, _ = d.WriteString(agentID)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(content)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatInt(ts.UnixNano(), 10))

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], d.Sum64())
	return hex.EncodeToString(buf[:])
}
