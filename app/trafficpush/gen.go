package trafficpush

import (
	"fmt"
	"math/rand"

	"github.com/pkg/math"
)

// makeContent synthesizes the payload for one emission.
// A literal Content is returned verbatim. Otherwise, when ContentLen is
// positive, the payload is a deterministic header "<name>/seq=<seq>&%_"
// padded with uniformly random bytes up to ContentLen; a header longer than
// ContentLen is returned without filler. Everything else yields an empty
// payload.
func makeContent(p Pattern, seq uint64) []byte {
	if p.Content != "" {
		return []byte(p.Content)
	}
	if p.ContentLen == nil || *p.ContentLen <= 0 {
		return nil
	}

	header := fmt.Sprintf("%s/seq=%d&%%_", p.Name, seq)
	payload := make([]byte, math.MaxInt(len(header), *p.ContentLen))
	copy(payload, header)
	rand.Read(payload[len(header):])
	return payload
}
