package ensemble

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// gobComponent is the on-the-wire shape persisted to
// internal/storage.ModelArtifact.Trees, matching spec.md §4.5's
// "serialized to an object blob" persistence requirement.
type gobComponent struct {
	Forest  *Forest
	Boosted *BoostedTrees
}

// encode serializes a Component's two regressors to a self-contained blob.
func (c *Component) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobComponent{Forest: c.Forest, Boosted: c.Boosted}); err != nil {
		return nil, fmt.Errorf("ensemble: encode component %s: %w", c.Name, err)
	}
	return buf.Bytes(), nil
}

// decodeComponent deserializes a blob written by encode back into a
// runnable Component for name.
func decodeComponent(name string, blob []byte) (*Component, error) {
	var g gobComponent
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&g); err != nil {
		return nil, fmt.Errorf("ensemble: decode component %s: %w", name, err)
	}
	return &Component{Name: name, Forest: g.Forest, Boosted: g.Boosted}, nil
}
