package resolver

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

var rasterExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".avif": true,
}

// validImages keeps only parseable URLs pointing at raster images,
// deduplicated on scheme+host+path so the same asset with different query
// strings counts once. First occurrence wins and the list is capped.
func (r *Resolver) validImages(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	valid := make([]string, 0, len(urls))

	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		if !rasterExtensions[strings.ToLower(path.Ext(u.Path))] {
			continue
		}

		key := u.Scheme + "://" + u.Host + u.Path
		if seen[key] {
			continue
		}
		seen[key] = true

		valid = append(valid, raw)
		if len(valid) >= r.maxImages {
			break
		}
	}

	return valid
}

func recoveredError(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("strategy panicked: %w", err)
	}
	return fmt.Errorf("strategy panicked: %v", r)
}
