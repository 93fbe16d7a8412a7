package runtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// TreeQuery selects what the diagnostic directory listing shows.
type TreeQuery struct {
	// Path restricts the listing to a subdirectory; empty lists the root.
	Path string
	// Truncate caps entries per directory; zero means the server default.
	Truncate int
	// Exclude is a pattern of entries to skip.
	Exclude string
}

// FetchTree retrieves the hosted server's plain-text directory rendering.
// It is a diagnostic aid: any transport failure yields a descriptive string
// instead of an error.
func FetchTree(ctx context.Context, base string, query TreeQuery) string {
	values := url.Values{}
	if query.Path != "" {
		values.Set("path", query.Path)
	}
	if query.Truncate > 0 {
		values.Set("truncate", strconv.Itoa(query.Truncate))
	}
	if query.Exclude != "" {
		values.Set("exclude", query.Exclude)
	}

	addr := base + PathTree
	if encoded := values.Encode(); encoded != "" {
		addr += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return fmt.Sprintf("tree unavailable: %v", err)
	}

	client := &http.Client{Timeout: DefaultConnectTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("tree unavailable: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Sprintf("tree unavailable: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("tree unavailable: status %d: %s", resp.StatusCode, body)
	}
	return string(body)
}
