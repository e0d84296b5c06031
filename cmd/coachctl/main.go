// Command coachctl runs the analysis, learning path and resume builder
// pipelines locally against the configured provider.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
