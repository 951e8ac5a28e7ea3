// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

package filterconfig

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// NullConfigHash is the fingerprint of the null configuration.
const NullConfigHash = "no-filter"

const hashLen = 12

// optionFingerprint is the canonical per-option hash input. Field order is
// part of the fingerprint format; do not reorder.
type optionFingerprint struct {
	Handle           string   `json:"handle"`
	OptionType       string   `json:"optionType"`
	Status           string   `json:"status"`
	VariantOptionKey string   `json:"variantOptionKey"`
	TargetScope      string   `json:"targetScope"`
	AllowedOptions   []string `json:"allowedOptions"`
	SelectedValues   []string `json:"selectedValues"`
	BaseOptionType   string   `json:"baseOptionType"`
}

type configFingerprint struct {
	ID          string              `json:"id"`
	Version     int                 `json:"version"`
	UpdatedAt   string              `json:"updatedAt"`
	TargetScope string              `json:"targetScope"`
	Options     []optionFingerprint `json:"options"`
}

// Hash returns a 12-hex-digit fingerprint of every configuration field that
// affects query or aggregation output. Options and their value lists are
// sort-canonicalized, so the hash is stable under arbitrary reordering.
// Including updatedAt makes cache invalidation on configuration change
// implicit wherever the hash is part of a cache key.
func Hash(c *FilterConfiguration) string {
	if c == nil {
		return NullConfigHash
	}

	options := make([]optionFingerprint, 0, len(c.Options))
	for _, o := range c.Options {
		options = append(options, optionFingerprint{
			Handle:           o.Handle,
			OptionType:       o.OptionType,
			Status:           string(o.Status.Normalize()),
			VariantOptionKey: o.OptionSettings.VariantOptionKey,
			TargetScope:      string(o.TargetScope),
			AllowedOptions:   sortedCopy(o.AllowedOptions),
			SelectedValues:   sortedCopy(o.OptionSettings.SelectedValues),
			BaseOptionType:   o.OptionSettings.BaseOptionType,
		})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Handle < options[j].Handle })

	payload := configFingerprint{
		ID:          c.ID,
		Version:     c.Version,
		UpdatedAt:   causalityTimestamp(c),
		TargetScope: string(c.TargetScope),
		Options:     options,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return NullConfigHash
	}
	sum := md5.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])[:hashLen]
}

// causalityTimestamp picks updatedAt, falling back to createdAt, then to the
// current process time for configurations carrying neither.
func causalityTimestamp(c *FilterConfiguration) string {
	switch {
	case !c.UpdatedAt.IsZero():
		return c.UpdatedAt.UTC().Format(time.RFC3339Nano)
	case !c.CreatedAt.IsZero():
		return c.CreatedAt.UTC().Format(time.RFC3339Nano)
	default:
		return time.Now().UTC().Format(time.RFC3339Nano)
	}
}

func sortedCopy(list []string) []string {
	if list == nil {
		return []string{}
	}
	out := append([]string{}, list...)
	sort.Strings(out)
	return out
}
