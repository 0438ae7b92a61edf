// Package cms prepares pasted rich text (Word, web pages, e-mail) for a CMS
// rich-text editor. It runs an ordered set of idempotent DOM rewrite passes
// over a dom.Document and serialises the result, and converts HTML to plain
// text.
package cms

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Markup is a kind of inline formatting that can be stripped.
type Markup string

const (
	MarkupBold      Markup = "bold"
	MarkupItalic    Markup = "italic"
	MarkupUnderline Markup = "underline"
)

// QuoteMode selects how quotation marks are rewritten.
type QuoteMode string

const (
	QuoteNoChange QuoteMode = "no_change"
	QuoteToSimple QuoteMode = "to_simple"
	QuoteToSmart  QuoteMode = "to_smart"
)

// QueryLevel selects how query strings of external links are cleaned.
type QueryLevel string

const (
	QueryNone                 QueryLevel = "none"
	QueryRemoveTrackingParams QueryLevel = "remove_tracking_params"
	QueryRemoveQuery          QueryLevel = "remove_query"
)

// ErrInvalidSettings is returned by Validate for settings that fail validation.
var ErrInvalidSettings = errors.New("invalid cleaner settings")

// Settings controls the optional parts of the cleaning pipeline. A run reads
// its Settings but never modifies them.
type Settings struct {
	// MarkupToRemove lists inline formatting that is unwrapped.
	MarkupToRemove []Markup `json:"markup_to_remove" yaml:"markup_to_remove" mapstructure:"markup_to_remove" validate:"dive,oneof=bold italic underline"`

	// AddTargetBlank adds target="_blank" to external links.
	AddTargetBlank bool `json:"add_target_blank" yaml:"add_target_blank" mapstructure:"add_target_blank"`

	// AddRelNoOpener adds the noopener token to rel on external links.
	AddRelNoOpener bool `json:"add_rel_noopener" yaml:"add_rel_noopener" mapstructure:"add_rel_noopener"`

	// QuoteProcess converts between straight and typographic quotes.
	QuoteProcess QuoteMode `json:"quote_process" yaml:"quote_process" mapstructure:"quote_process" validate:"omitempty,oneof=no_change to_simple to_smart"`

	// QueryCleanLevel strips tracking parameters or whole query strings.
	QueryCleanLevel QueryLevel `json:"query_clean_level" yaml:"query_clean_level" mapstructure:"query_clean_level" validate:"omitempty,oneof=none remove_tracking_params remove_query"`

	// CreateLinkFromText turns bare URLs in text into anchors.
	CreateLinkFromText bool `json:"create_link_from_text" yaml:"create_link_from_text" mapstructure:"create_link_from_text"`

	// LocalHosts are hosts of the CMS itself. Absolute links to these hosts
	// (or their subdomains) are treated as local.
	LocalHosts []string `json:"local_hosts" yaml:"local_hosts" mapstructure:"local_hosts" validate:"dive,hostname"`
}

// DefaultSettings returns the settings a fresh installation starts with.
func DefaultSettings() *Settings {
	return &Settings{
		AddTargetBlank:  true,
		AddRelNoOpener:  true,
		QuoteProcess:    QuoteNoChange,
		QueryCleanLevel: QueryNone,
	}
}

// Removes reports whether m is listed in MarkupToRemove.
func (s *Settings) Removes(m Markup) bool {
	return slices.Contains(s.MarkupToRemove, m)
}

// Validate checks enum fields and host names.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}
