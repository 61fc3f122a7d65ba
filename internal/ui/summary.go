// File: internal/ui/summary.go
// Brief: Post-provision summary of endpoints and credentials.

package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/stackup/internal/credentials"
)

// PrintSummary writes the endpoints and keys an operator needs after a
// successful bring-up. The same values land in the credentials file; this is
// the on-screen copy.
func PrintSummary(out io.Writer, art credentials.Artifact, credentialsPath string) {
	head := color.New(color.Bold)
	label := color.New(color.FgCyan)

	fmt.Fprintln(out)
	head.Fprintln(out, "Stack is up.")
	fmt.Fprintln(out)
	label.Fprint(out, "  API URL:       ")
	fmt.Fprintln(out, art.APIURL)
	label.Fprint(out, "  Studio URL:    ")
	fmt.Fprintln(out, art.StudioURL)
	label.Fprint(out, "  Postgres URL:  ")
	fmt.Fprintln(out, art.PostgresURL)
	fmt.Fprintln(out)
	label.Fprint(out, "  anon key:          ")
	fmt.Fprintln(out, art.AnonKey)
	label.Fprint(out, "  service_role key:  ")
	fmt.Fprintln(out, art.ServiceRoleKey)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Credentials written to %s (keep it private).\n", credentialsPath)
}
