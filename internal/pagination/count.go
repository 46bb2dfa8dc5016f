package pagination

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// count is a non-negative integer meta field. Servers send these as numbers,
// sometimes as floats ("3.0") and sometimes as numeric strings ("3").
type count int

func (c *count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}

	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("pagination: %q is not a count", b)
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return fmt.Errorf("pagination: %v is not a count", f)
	}
	*c = count(f)
	return nil
}

// pageMeta carries the paging numbers a server may echo back. Nil means absent.
type pageMeta struct {
	Total      *count `json:"total"`
	Page       *count `json:"page"`
	Limit      *count `json:"limit"`
	TotalPages *count `json:"totalPages"`
}

func intOr(c *count, def int) int {
	if c == nil {
		return def
	}
	return int(*c)
}
