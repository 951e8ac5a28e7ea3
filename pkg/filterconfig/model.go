// Copyright Elasticsearch B.V. and/or licensed to Elasticsearch B.V. under one
// or more contributor license agreements. Licensed under the Elastic License 2.0;
// you may not use this file except in compliance with the Elastic License 2.0.

// Package filterconfig models the per-tenant filter configuration and the
// rules it applies to incoming filter inputs: handle resolution, scope
// restriction, standard-filter extraction and derived-option restriction.
package filterconfig

import (
	"encoding/json"
	"time"

	"github.com/elastic/storefront-search/pkg/utils/stringsutil"
)

// Status of a configuration or of a single option. Stored values are
// normalized on ingest; comparison is always case-insensitive.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Normalize lowercases and trims the status so that "PUBLISHED" and
// "published" compare equal.
func (s Status) Normalize() Status {
	return Status(stringsutil.LowerTrim(string(s)))
}

// IsPublished returns true for any casing of "published".
func (s Status) IsPublished() bool {
	return s.Normalize() == StatusPublished
}

// DeploymentChannel describes where a configuration is deployed.
type DeploymentChannel string

const (
	ChannelApp   DeploymentChannel = "app"
	ChannelTheme DeploymentChannel = "theme"
	ChannelOther DeploymentChannel = "other"
)

// TargetScope restricts either the whole configuration or a single option.
type TargetScope string

const (
	ScopeAll      TargetScope = "all"
	ScopeEntitled TargetScope = "entitled"
)

// CollectionRef references a collection by its normalized numeric ID.
type CollectionRef struct {
	ID string `json:"id"`
}

// OptionSettings carries the indexing details of one facet definition.
type OptionSettings struct {
	// VariantOptionKey is the indexed field name this facet targets, e.g. "Color".
	VariantOptionKey string `json:"variantOptionKey,omitempty"`
	// BaseOptionType names the option a derived facet aggregates over.
	BaseOptionType string `json:"baseOptionType,omitempty"`
	// SelectedValues whitelists facet values for derived options.
	SelectedValues []string `json:"selectedValues,omitempty"`
}

// Option is one ordered facet definition within a configuration.
type Option struct {
	// Handle is the opaque ID used as URL key, e.g. "pr_a3k9x".
	Handle   string `json:"handle" validate:"required"`
	Label    string `json:"label,omitempty"`
	Position int    `json:"position" validate:"gte=0"`
	// OptionType is the indexed field name when no variantOptionKey is set,
	// or a standard filter name (vendor, productType, ...).
	OptionType     string         `json:"optionType"`
	OptionSettings OptionSettings `json:"optionSettings"`
	TargetScope    TargetScope    `json:"targetScope,omitempty"`
	AllowedOptions []string       `json:"allowedOptions,omitempty"`
	Status         Status         `json:"status"`
}

// Name returns the option name filter inputs are keyed by after handle
// resolution: the variantOptionKey if set, else the optionType, else the
// handle itself.
func (o Option) Name() string {
	if o.OptionSettings.VariantOptionKey != "" {
		return o.OptionSettings.VariantOptionKey
	}
	if o.OptionType != "" {
		return o.OptionType
	}
	return o.Handle
}

// Settings holds configuration-wide behavior switches. Display settings are
// kept opaque and flow untouched to the frontend.
type Settings struct {
	HideOutOfStockItems bool            `json:"hideOutOfStockItems,omitempty"`
	Display             json.RawMessage `json:"display,omitempty"`
}

// FilterConfiguration is a versioned document describing filter UI and
// semantics for one tenant. A nil *FilterConfiguration is the explicit
// null configuration: every lookup on it returns pass-through values.
type FilterConfiguration struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`

	Status            Status            `json:"status"`
	DeploymentChannel DeploymentChannel `json:"deploymentChannel"`

	TargetScope        TargetScope     `json:"targetScope,omitempty"`
	AllowedCollections []CollectionRef `json:"allowedCollections,omitempty"`

	Settings Settings `json:"settings"`
	Options  []Option `json:"options" validate:"dive"`
}

// Eligible returns true when the configuration can serve storefront traffic:
// published, and deployed through the app or theme channel.
func (c *FilterConfiguration) Eligible() bool {
	if c == nil {
		return false
	}
	if !c.Status.IsPublished() {
		return false
	}
	switch DeploymentChannel(stringsutil.LowerTrim(string(c.DeploymentChannel))) {
	case ChannelApp, ChannelTheme:
		return true
	}
	return false
}

// PublishedOptions returns the options participating in filtering.
func (c *FilterConfiguration) PublishedOptions() []Option {
	if c == nil {
		return nil
	}
	var published []Option
	for _, o := range c.Options {
		if o.Status.IsPublished() {
			published = append(published, o)
		}
	}
	return published
}

// Entitled returns true when the configuration restricts the product universe
// to an explicit collection set.
func (c *FilterConfiguration) Entitled() bool {
	return c != nil &&
		TargetScope(stringsutil.LowerTrim(string(c.TargetScope))) == ScopeEntitled &&
		len(c.AllowedCollections) > 0
}

// AllowedCollectionIDs returns the normalized collection IDs of the
// entitlement scope.
func (c *FilterConfiguration) AllowedCollectionIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.AllowedCollections))
	for _, ref := range c.AllowedCollections {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// ScopedToCollection returns true when the entitlement scope contains the
// given collection ID.
func (c *FilterConfiguration) ScopedToCollection(collectionID string) bool {
	if c == nil || collectionID == "" {
		return false
	}
	return stringsutil.StringInSlice(collectionID, c.AllowedCollectionIDs())
}

// HandleIndex maps every published option's handle to its resolved option
// name. The resolved name and its lowercased form map to themselves so that
// explicit options[Name] parameters survive configuration application.
func (c *FilterConfiguration) HandleIndex() map[string]string {
	if c == nil {
		return nil
	}
	index := map[string]string{}
	for _, o := range c.PublishedOptions() {
		name := o.Name()
		index[o.Handle] = name
		index[name] = name
		index[stringsutil.LowerTrim(name)] = name
	}
	return index
}

// standardFilters maps normalized option names to the product-level filter
// they belong to. Options matching this table must query vendor.keyword etc.,
// not optionPairs.keyword.
var standardFilters = map[string]StandardFilter{
	"vendor":       StandardVendor,
	"vendors":      StandardVendor,
	"producttype":  StandardProductType,
	"product_type": StandardProductType,
	"producttypes": StandardProductType,
	"tag":          StandardTag,
	"tags":         StandardTag,
	"collection":   StandardCollection,
	"collections":  StandardCollection,
	"price":        StandardPrice,
}

// StandardFilter identifies a product-level indexed filter field.
type StandardFilter string

const (
	StandardVendor      StandardFilter = "vendors"
	StandardProductType StandardFilter = "productTypes"
	StandardTag         StandardFilter = "tags"
	StandardCollection  StandardFilter = "collections"
	StandardPrice       StandardFilter = "price"
)

// LookupStandardFilter resolves an option name to the standard filter it
// represents, if any. Matching is on the lowercased, trimmed name.
func LookupStandardFilter(name string) (StandardFilter, bool) {
	f, ok := standardFilters[stringsutil.LowerTrim(name)]
	return f, ok
}

// IsStandardFilterName returns true when the option name corresponds to a
// product-level indexed field.
func IsStandardFilterName(name string) bool {
	_, ok := LookupStandardFilter(name)
	return ok
}

// VariantOptionKeys derives the set of variant option names exposed by the
// configuration, lowercased. For each published option the variantOptionKey
// wins; a derived option over "option" contributes its optionType; any other
// derived option contributes its baseOptionType. Standard filter names are
// excluded. An empty set means "pass all buckets".
func (c *FilterConfiguration) VariantOptionKeys() map[string]struct{} {
	if c == nil {
		return nil
	}
	keys := map[string]struct{}{}
	for _, o := range c.PublishedOptions() {
		var name string
		switch {
		case o.OptionSettings.VariantOptionKey != "":
			name = o.OptionSettings.VariantOptionKey
		case stringsutil.LowerTrim(o.OptionSettings.BaseOptionType) == "option":
			name = o.OptionType
		default:
			name = o.OptionSettings.BaseOptionType
		}
		name = stringsutil.LowerTrim(name)
		if name == "" || IsStandardFilterName(name) {
			continue
		}
		keys[name] = struct{}{}
	}
	return keys
}

// OptionPosition returns the position of the published option with the given
// name, and whether one exists.
func (c *FilterConfiguration) OptionPosition(name string) (int, bool) {
	if c == nil {
		return 0, false
	}
	lower := stringsutil.LowerTrim(name)
	for _, o := range c.PublishedOptions() {
		if stringsutil.LowerTrim(o.Name()) == lower {
			return o.Position, true
		}
	}
	return 0, false
}
