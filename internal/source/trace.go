package source

import (
	"github.com/pelletier/go-toml/v2"

	dkerrors "domkey/internal/errors"
)

// TraceVisit is one recorded Register call.
type TraceVisit struct {
	ID      string `toml:"id"`
	Depth   int    `toml:"depth"`
	Sibling bool   `toml:"sibling"`
}

type traceFile struct {
	Visits []TraceVisit `toml:"visit"`
}

// ParseTrace parses a TOML visit trace:
//
//	[[visit]]
//	id = "root"
//	depth = 0
//	sibling = false
func ParseTrace(data []byte) ([]TraceVisit, error) {
	var f traceFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, dkerrors.New(dkerrors.ParseFailed, "invalid visit trace", err)
	}
	for i, v := range f.Visits {
		if v.ID == "" {
			return nil, dkerrors.Newf(dkerrors.ParseFailed, "visit %d has no id", i)
		}
	}
	return f.Visits, nil
}
