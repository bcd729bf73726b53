package stability

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// dump writes a raw response body to DumpDir. Failures are only logged.
func (c *Client) dump(op string, body []byte) {
	if c.opts.DumpDir == "" {
		return
	}

	if err := os.MkdirAll(c.opts.DumpDir, 0700); err != nil {
		c.opts.Logger.Warn("response dump failed", "op", op, "error", err)
		return
	}

	path := filepath.Join(c.opts.DumpDir, fmt.Sprintf("response-%d.json", time.Now().UnixNano()))
	if err := os.WriteFile(path, body, 0600); err != nil {
		c.opts.Logger.Warn("response dump failed", "op", op, "error", err)
		return
	}
	c.opts.Logger.Debug("response dumped", "op", op, "path", path)
}
