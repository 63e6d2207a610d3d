package domain

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal encodes a draft into its persisted JSON record.
func Marshal(d *CampaignDraft) ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a persisted record. Any decoding failure, including a
// record without a schema version, wraps ErrMalformedDraft.
func Unmarshal(data []byte) (*CampaignDraft, error) {
	var d CampaignDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDraft, err)
	}
	if d.Version == 0 {
		return nil, fmt.Errorf("%w: missing schema version", ErrMalformedDraft)
	}
	return &d, nil
}
