// Package settings holds the immutable configuration snapshot that every
// sync component receives explicitly. A Settings value is decoded once per
// run and never mutated afterwards; components that need a modified copy
// call Clone.
package settings

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agentstation/shelfmark/pkg/catalog"
	"github.com/agentstation/shelfmark/pkg/errors"
	"github.com/agentstation/shelfmark/pkg/fields"
)

// Identifier properties. They are always written first in a header block.
const (
	BookIDProperty   = "hardcoverBookId"
	AuthorIDProperty = "hardcoverAuthorId"
	SeriesIDProperty = "hardcoverSeriesId"
	AliasesProperty  = "aliases"
)

// Default values.
const (
	DefaultTargetFolder           = "HardcoverBooks"
	DefaultAuthorFolder           = "HardcoverBooks/Authors"
	DefaultSeriesFolder           = "HardcoverBooks/Series"
	DefaultFilenameTemplate       = "${title} (${year})"
	DefaultAuthorFilenameTemplate = "${authorName}"
	DefaultSeriesFilenameTemplate = "${name}"
	DefaultBaseURL                = "https://hardcover.app"
)

// Source selects which nested record an attribute is read from.
type Source string

// Sources.
const (
	SourceBook    Source = "book"
	SourceEdition Source = "edition"
)

// DataSourcePreferences picks a source per configurable attribute.
type DataSourcePreferences struct {
	Title        Source `mapstructure:"title" yaml:"title"`
	Cover        Source `mapstructure:"cover" yaml:"cover"`
	ReleaseDate  Source `mapstructure:"release_date" yaml:"release_date"`
	Authors      Source `mapstructure:"authors" yaml:"authors"`
	Contributors Source `mapstructure:"contributors" yaml:"contributors"`
}

// For returns the preferred source for k. Keys without a configurable source
// report SourceBook.
func (p DataSourcePreferences) For(k fields.Key) Source {
	switch k {
	case fields.Title:
		return p.Title
	case fields.Cover:
		return p.Cover
	case fields.ReleaseDate:
		return p.ReleaseDate
	case fields.Authors:
		return p.Authors
	case fields.Contributors:
		return p.Contributors
	default:
		return SourceBook
	}
}

// Pick returns the record's source selected for k.
func (p DataSourcePreferences) Pick(k fields.Key, rec catalog.Record) catalog.Source {
	if p.For(k) == SourceBook {
		return rec.Book
	}
	return rec.Edition
}

// Group configures author and series notes.
type Group struct {
	Enabled                bool   `mapstructure:"enabled" yaml:"enabled"`
	AuthorFolder           string `mapstructure:"author_folder" yaml:"author_folder"`
	SeriesFolder           string `mapstructure:"series_folder" yaml:"series_folder"`
	AuthorFilenameTemplate string `mapstructure:"author_filename_template" yaml:"author_filename_template"`
	SeriesFilenameTemplate string `mapstructure:"series_filename_template" yaml:"series_filename_template"`
	AddAliases             bool   `mapstructure:"add_aliases" yaml:"add_aliases"`
	DateCreatedProperty    string `mapstructure:"date_created_property" yaml:"date_created_property,omitempty"`
	DateModifiedProperty   string `mapstructure:"date_modified_property" yaml:"date_modified_property,omitempty"`
	PruneMissing           bool   `mapstructure:"prune_missing" yaml:"prune_missing"`
}

// Settings is the per-sync configuration snapshot.
type Settings struct {
	Fields           fields.Set            `mapstructure:"fields" yaml:"fields"`
	Sources          DataSourcePreferences `mapstructure:"sources" yaml:"sources"`
	StatusLabels     map[int]string        `mapstructure:"status_labels" yaml:"status_labels"`
	TargetFolder     string                `mapstructure:"target_folder" yaml:"target_folder"`
	FilenameTemplate string                `mapstructure:"filename_template" yaml:"filename_template"`
	SingleNotes      bool                  `mapstructure:"single_notes" yaml:"single_notes"`
	GenresAsTags     string                `mapstructure:"genres_as_tags" yaml:"genres_as_tags,omitempty"`
	BaseURL          string                `mapstructure:"base_url" yaml:"base_url"`
	Group            Group                 `mapstructure:"group" yaml:"group"`
}

// DefaultStatusLabels maps status codes to their display labels.
func DefaultStatusLabels() map[int]string {
	return map[int]string{
		catalog.StatusWantToRead: "Want to Read",
		catalog.StatusReading:    "Currently Reading",
		catalog.StatusRead:       "Read",
		catalog.StatusDNF:        "Did Not Finish",
	}
}

// Default returns the out-of-the-box settings.
func Default() Settings {
	return Settings{
		Fields: fields.DefaultSet(),
		Sources: DataSourcePreferences{
			Title:        SourceEdition,
			Cover:        SourceEdition,
			ReleaseDate:  SourceEdition,
			Authors:      SourceEdition,
			Contributors: SourceEdition,
		},
		StatusLabels:     DefaultStatusLabels(),
		TargetFolder:     DefaultTargetFolder,
		FilenameTemplate: DefaultFilenameTemplate,
		SingleNotes:      true,
		BaseURL:          DefaultBaseURL,
		Group: Group{
			Enabled:                true,
			AuthorFolder:           DefaultAuthorFolder,
			SeriesFolder:           DefaultSeriesFolder,
			AuthorFilenameTemplate: DefaultAuthorFilenameTemplate,
			SeriesFilenameTemplate: DefaultSeriesFilenameTemplate,
			AddAliases:             true,
			DateModifiedProperty:   "dateModified",
		},
	}
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	out := s
	out.Fields = s.Fields.Clone()
	out.StatusLabels = make(map[int]string, len(s.StatusLabels))
	for k, v := range s.StatusLabels {
		out.StatusLabels[k] = v
	}
	return out
}

// Normalize canonicalizes decoded settings: field keys are re-keyed to
// their canonical spelling, folders are cleaned and empty sources fall back
// to the edition record.
func (s *Settings) Normalize() error {
	if s.Fields == nil {
		s.Fields = fields.DefaultSet()
	}
	canonical := make(fields.Set, len(s.Fields))
	var aliased []fields.Key
	for k, c := range s.Fields {
		key, err := fields.ParseKey(string(k))
		if err != nil {
			return errors.WrapValidation("fields", err)
		}
		if key == k {
			canonical[key] = c
			continue
		}
		aliased = append(aliased, k)
	}
	// config-file spellings win over defaults
	for _, k := range aliased {
		key, _ := fields.ParseKey(string(k))
		canonical[key] = s.Fields[k]
	}
	s.Fields = canonical

	if s.StatusLabels == nil {
		s.StatusLabels = DefaultStatusLabels()
	}

	for _, src := range []*Source{&s.Sources.Title, &s.Sources.Cover, &s.Sources.ReleaseDate, &s.Sources.Authors, &s.Sources.Contributors} {
		switch Source(strings.ToLower(string(*src))) {
		case "":
			*src = SourceEdition
		case SourceBook:
			*src = SourceBook
		case SourceEdition:
			*src = SourceEdition
		default:
			return errors.NewValidationError("sources", string(*src), fmt.Sprintf("unknown data source %q (want book or edition)", *src))
		}
	}

	s.TargetFolder = CleanFolder(s.TargetFolder)
	s.Group.AuthorFolder = CleanFolder(s.Group.AuthorFolder)
	s.Group.SeriesFolder = CleanFolder(s.Group.SeriesFolder)
	if strings.TrimSpace(s.BaseURL) == "" {
		s.BaseURL = DefaultBaseURL
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	return nil
}

// Validate checks the settings that must hold before a sync may start.
func (s Settings) Validate() error {
	if IsRootOrEmpty(s.TargetFolder) {
		return errors.NewValidationError("target_folder", s.TargetFolder,
			"Please specify a subfolder for your books. Using the vault root is not supported.")
	}
	if s.Group.Enabled {
		if IsRootOrEmpty(s.Group.AuthorFolder) {
			return errors.NewValidationError("group.author_folder", s.Group.AuthorFolder,
				"Please specify a subfolder for author notes. Using the vault root is not supported.")
		}
		if IsRootOrEmpty(s.Group.SeriesFolder) {
			return errors.NewValidationError("group.series_folder", s.Group.SeriesFolder,
				"Please specify a subfolder for series notes. Using the vault root is not supported.")
		}
	}
	if strings.TrimSpace(s.FilenameTemplate) == "" {
		return errors.NewValidationError("filename_template", s.FilenameTemplate, "filename template cannot be empty")
	}
	return nil
}

// StatusLabel returns the display label for a status code.
func (s Settings) StatusLabel(code int) string {
	if label, ok := s.StatusLabels[code]; ok && label != "" {
		return label
	}
	return fmt.Sprintf("Unknown (%d)", code)
}

var watermarkPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(([+-]\d{2}:\d{2})|Z)?$`)

// ValidateWatermark accepts an empty watermark (full sync) or an ISO 8601
// timestamp.
func ValidateWatermark(ts string) error {
	if ts == "" || watermarkPattern.MatchString(ts) {
		return nil
	}
	return errors.NewValidationError("watermark", ts,
		"Invalid timestamp format. Please use ISO 8601 format (YYYY-MM-DDTHH:mm:ss.SSSZ) or leave empty.")
}

// CleanFolder strips leading/trailing slashes and collapses duplicates.
func CleanFolder(p string) string {
	p = strings.TrimSpace(p)
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return strings.Trim(p, "/")
}

// IsRootOrEmpty reports whether p denotes the vault root.
func IsRootOrEmpty(p string) bool {
	c := CleanFolder(p)
	return c == "" || c == "."
}
