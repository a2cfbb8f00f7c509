package relay

import (
	"fmt"
	"strings"
)

// Config is the deployment configuration of the relay. Sender and recipient
// never come from the request.
type Config struct {
	APIKey string
	From   string
	To     string
}

// Recipients splits To on commas.
func (c Config) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(c.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// Validate checks that sender and recipient are set.
func (c Config) Validate() error {
	if strings.TrimSpace(c.From) == "" {
		return fmt.Errorf("relay: EMAIL_FROM is required")
	}
	if len(c.Recipients()) == 0 {
		return fmt.Errorf("relay: EMAIL_TO is required")
	}
	return nil
}
