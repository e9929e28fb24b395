package process

import (
	"fmt"
	"os"
)

// debugf writes a diagnostic line when PWDS_EXPECT_DEBUG is set
func debugf(format string, args ...any) {
	if os.Getenv("PWDS_EXPECT_DEBUG") == "true" {
		fmt.Fprintf(os.Stderr, "pwds-expect: "+format+"\n", args...)
	}
}
