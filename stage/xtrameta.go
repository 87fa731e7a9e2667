package stage

import (
	"bytes"
	"strings"
	"time"

	"github.com/dendrascience/amshared/util"
	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// XtraMeta adds keys to a record's metadata right before it is written.
type XtraMeta interface {
	Metadata(content any) map[string]any
}

// XtraMetaFunc adapts a function to XtraMeta.
type XtraMetaFunc func(content any) map[string]any

func (f XtraMetaFunc) Metadata(content any) map[string]any {
	return f(content)
}

// CTime stamps the UTC creation time under KeyCTime.
type CTime struct {
	Now func() time.Time
}

func (c CTime) Metadata(any) map[string]any {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return map[string]any{KeyCTime: now().UTC().Format(CTimeLayout)}
}

// UUID stamps a random identifier under KeyUUID.
type UUID struct{}

func (UUID) Metadata(any) map[string]any {
	return map[string]any{KeyUUID: uuid.NewString()}
}

// ContentType sniffs byte content and stores its MIME type under KeyMIME.
// Content that is not raw bytes, or whose type is unknown, adds nothing.
type ContentType struct{}

func (ContentType) Metadata(content any) map[string]any {
	b, ok := content.([]byte)
	if !ok {
		return nil
	}
	kind, err := filetype.Match(b)
	if err != nil || kind == filetype.Unknown {
		return nil
	}
	return map[string]any{KeyMIME: kind.MIME.Value}
}

// Checksum stores the SHA-256 of string or byte content under KeySHA256.
type Checksum struct{}

func (Checksum) Metadata(content any) map[string]any {
	var (
		sum string
		err error
	)
	switch c := content.(type) {
	case []byte:
		sum, err = util.GetHash(bytes.NewReader(c))
	case string:
		sum, err = util.GetHash(strings.NewReader(c))
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return map[string]any{KeySHA256: sum}
}

// DefaultXtraMeta is the provider set used when none is configured.
func DefaultXtraMeta() []XtraMeta {
	return []XtraMeta{CTime{}}
}
