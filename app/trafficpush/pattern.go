package trafficpush

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ndntg/ndn-traffic-push/core/nnduration"
)

// Recognized traffic pattern parameters.
// Anything else in a configuration block is logged and ignored.
const (
	keyName               = "Name"
	keyContentDelay       = "ContentDelay"
	keyGenerationInterval = "GenerationInterval"
	keyFreshnessPeriod    = "FreshnessPeriod"
	keyContentType        = "ContentType"
	keyContentBytes       = "ContentBytes"
	keyContent            = "Content"
	keySigningInfo        = "SigningInfo"
)

// Pattern describes one traffic pattern.
// A Pattern is immutable after configuration loading; emission counters live
// in the per-pattern loop state, not here.
type Pattern struct {
	// Name is the prefix to advertise and publish under. Required.
	Name string `json:"name"`

	// ContentDelay is an extra wait applied before each transmission,
	// in addition to the process-wide content delay. Optional.
	ContentDelay *nnduration.Microseconds `json:"contentDelay,omitempty"`

	// Interval is the time between emissions. Required.
	// Zero means fire exactly once (single shot), then park until shutdown.
	Interval *nnduration.Microseconds `json:"generationInterval,omitempty"`

	// Freshness is the FreshnessPeriod of emitted Data packets. Optional.
	Freshness *nnduration.Milliseconds `json:"freshnessPeriod,omitempty"`

	// ContentType is the ContentType of emitted Data packets. Optional.
	ContentType *uint32 `json:"contentType,omitempty"`

	// ContentLen is the payload length of synthesized content. Optional.
	ContentLen *int `json:"contentBytes,omitempty"`

	// Content is a literal payload. When non-empty, it overrides ContentLen
	// and the synthesized sequence header.
	Content string `json:"content,omitempty"`

	// SigningInfo selects the signing policy; see MakeSigner.
	// Empty selects SHA256 digest signing.
	SigningInfo string `json:"signingInfo,omitempty"`
}

// applyParameter assigns one key=value parameter.
// Unknown keys return ok=false and are not an error.
func (p *Pattern) applyParameter(key, value string) (ok bool, e error) {
	switch key {
	case keyName:
		p.Name = value
	case keyContentDelay:
		d := new(nnduration.Microseconds)
		if e := d.UnmarshalText([]byte(value)); e != nil {
			return true, fmt.Errorf("%s: %w", key, e)
		}
		p.ContentDelay = d
	case keyGenerationInterval:
		d := new(nnduration.Microseconds)
		if e := d.UnmarshalText([]byte(value)); e != nil {
			return true, fmt.Errorf("%s: %w", key, e)
		}
		p.Interval = d
	case keyFreshnessPeriod:
		d := new(nnduration.Milliseconds)
		if e := d.UnmarshalText([]byte(value)); e != nil {
			return true, fmt.Errorf("%s: %w", key, e)
		}
		p.Freshness = d
	case keyContentType:
		v, e := strconv.ParseUint(value, 10, 32)
		if e != nil {
			return true, fmt.Errorf("%s: %w", key, e)
		}
		ct := uint32(v)
		p.ContentType = &ct
	case keyContentBytes:
		v, e := strconv.ParseUint(value, 10, 31)
		if e != nil {
			return true, fmt.Errorf("%s: %w", key, e)
		}
		n := int(v)
		p.ContentLen = &n
	case keyContent:
		p.Content = value
	case keySigningInfo:
		p.SigningInfo = value
	default:
		return false, nil
	}
	return true, nil
}

// Validate checks semantic correctness of this pattern.
func (p Pattern) Validate() error {
	if p.Name == "" {
		return ErrMissingName
	}
	if !strings.HasPrefix(p.Name, "/") {
		return fmt.Errorf("Name %q does not start with '/'", p.Name)
	}
	if p.Interval == nil {
		return ErrMissingInterval
	}
	return nil
}

// String returns a one-line rendition of the configured parameters.
func (p Pattern) String() string {
	var b strings.Builder
	if p.Name != "" {
		fmt.Fprintf(&b, "Name=%s, ", p.Name)
	}
	if p.ContentDelay != nil {
		fmt.Fprintf(&b, "ContentDelay=%v, ", *p.ContentDelay)
	}
	if p.Interval != nil {
		fmt.Fprintf(&b, "GenerationInterval=%v, ", *p.Interval)
	}
	if p.Freshness != nil {
		fmt.Fprintf(&b, "FreshnessPeriod=%v, ", *p.Freshness)
	}
	if p.ContentType != nil {
		fmt.Fprintf(&b, "ContentType=%d, ", *p.ContentType)
	}
	if p.ContentLen != nil {
		fmt.Fprintf(&b, "ContentBytes=%d, ", *p.ContentLen)
	}
	if p.Content != "" {
		fmt.Fprintf(&b, "Content=%s, ", p.Content)
	}
	signingInfo := p.SigningInfo
	if signingInfo == "" {
		signingInfo = "digest"
	}
	fmt.Fprintf(&b, "SigningInfo=%s", signingInfo)
	return b.String()
}
