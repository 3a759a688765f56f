package cache

import (
	"encoding/json"
	"fmt"
)

// Key encodes a canonical key struct. Callers sort list fields before
// calling so that equivalent queries share an entry.
func Key(prefix string, v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%s:%v", prefix, v)
	}
	return prefix + ":" + string(b)
}
