package paging

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"

	apperr "github.com/aevon-lab/project-vitals/internal/core/errors"
)

// Token layout, before base64 (standard alphabet, padded):
//
//	<lastRowID>
//	<lastRowID>,<resourceType>,<id>;<id>;...
//
// Issued tokens must keep decoding forever. New fields are appended with a new
// field-count branch in DecodePageToken; existing positions are never reused.
const (
	outerDelimiter = ","
	innerDelimiter = ";"

	fieldsCursorOnly = 1
	fieldsWithFilter = 3

	initialRowID int64 = -1
)

// digitsOnly matches numbers as Encode writes them: no sign, no spaces.
var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// PageToken is the only state carried between pages of a read: the last row
// id already returned and the filter the read started with.
type PageToken struct {
	lastRowID int64
	filter    *ReadFilter
}

// InitialPageToken starts a read. It has no cursor and cannot be encoded.
func InitialPageToken(filter *ReadFilter) PageToken {
	return PageToken{lastRowID: initialRowID, filter: copyFilter(filter)}
}

// NewPageToken builds a token positioned after lastRowID.
func NewPageToken(lastRowID int64, filter *ReadFilter) (PageToken, error) {
	if lastRowID < 0 {
		return PageToken{}, apperr.Validationf("last_row_id", "must be >= 0, got %d", lastRowID)
	}
	return PageToken{lastRowID: lastRowID, filter: copyFilter(filter)}, nil
}

func copyFilter(f *ReadFilter) *ReadFilter {
	if f == nil {
		return nil
	}
	c := ReadFilter{resourceType: f.resourceType, dataSourceIDs: f.DataSourceIDs()}
	return &c
}

// LastRowID is the cursor, or -1 for an initial token.
func (t PageToken) LastRowID() int64 { return t.lastRowID }

// IsInitial reports whether no page has been read yet.
func (t PageToken) IsInitial() bool { return t.lastRowID < 0 }

// Filter returns the echoed filter, if any.
func (t PageToken) Filter() (ReadFilter, bool) {
	if t.filter == nil {
		return ReadFilter{}, false
	}
	return *t.filter, true
}

// WithNewLastRowID returns a copy of t positioned after lastRowID.
func (t PageToken) WithNewLastRowID(lastRowID int64) (PageToken, error) {
	return NewPageToken(lastRowID, t.filter)
}

// Equal is structural equality over cursor and filter.
func (t PageToken) Equal(o PageToken) bool {
	if t.lastRowID != o.lastRowID {
		return false
	}
	if (t.filter == nil) != (o.filter == nil) {
		return false
	}
	return t.filter == nil || t.filter.Equal(*o.filter)
}

// Encode serializes t. Initial tokens have nothing to encode and fail.
func (t PageToken) Encode() (string, error) {
	if t.lastRowID < 0 {
		return "", apperr.Validationf("last_row_id", "cannot encode page token with last row id %d", t.lastRowID)
	}

	var b strings.Builder
	b.WriteString(strconv.FormatInt(t.lastRowID, 10))
	if t.filter != nil {
		b.WriteString(outerDelimiter)
		b.WriteString(strconv.Itoa(int(t.filter.resourceType)))
		b.WriteString(outerDelimiter)
		b.WriteString(strings.Join(t.filter.dataSourceIDs, innerDelimiter))
	}
	return base64.StdEncoding.EncodeToString([]byte(b.String())), nil
}

// DecodePageToken parses a token produced by Encode. Every failure wraps
// ErrCorruptToken; decoding never falls back to an initial read.
func DecodePageToken(s string) (PageToken, error) {
	tok, err := decode(s)
	if err != nil {
		tokenDecodeFailures.Inc()
		return PageToken{}, err
	}
	return tok, nil
}

// DecodePageTokenAllowingEmpty treats an empty string as the start of an
// unfiltered read.
func DecodePageTokenAllowingEmpty(s string) (PageToken, error) {
	if s == "" {
		return InitialPageToken(nil), nil
	}
	return DecodePageToken(s)
}

func decode(s string) (PageToken, error) {
	if s == "" {
		return PageToken{}, apperr.CorruptTokenf("empty token")
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return PageToken{}, apperr.CorruptTokenf("not base64: %v", err)
	}

	fields := strings.Split(string(raw), outerDelimiter)
	switch len(fields) {
	case fieldsCursorOnly, fieldsWithFilter:
	default:
		return PageToken{}, apperr.CorruptTokenf("expected %d or %d fields, got %d",
			fieldsCursorOnly, fieldsWithFilter, len(fields))
	}

	if !digitsOnly.MatchString(fields[0]) {
		return PageToken{}, apperr.CorruptTokenf("invalid last row id %q", fields[0])
	}
	lastRowID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return PageToken{}, apperr.CorruptTokenf("invalid last row id %q", fields[0])
	}
	if lastRowID < 0 {
		return PageToken{}, apperr.CorruptTokenf("negative last row id %d", lastRowID)
	}
	if len(fields) == fieldsCursorOnly {
		return PageToken{lastRowID: lastRowID}, nil
	}

	typeValue, err := strconv.Atoi(fields[1])
	if err != nil || strconv.Itoa(typeValue) != fields[1] {
		return PageToken{}, apperr.CorruptTokenf("invalid resource type %q", fields[1])
	}
	var ids []string
	if fields[2] != "" {
		ids = strings.Split(fields[2], innerDelimiter)
	}
	filter, err := NewReadFilter(MedicalResourceType(typeValue), ids)
	if err != nil {
		return PageToken{}, apperr.CorruptTokenf("%v", err)
	}
	return PageToken{lastRowID: lastRowID, filter: &filter}, nil
}
