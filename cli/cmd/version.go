package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/glue/pkg"
)

// Version prints the program version.
type Version struct{}

// Run executes the version command.
func (Version) Run(ctx context.Context) error {
	_, err := fmt.Fprintf(streamsFrom(ctx).out, "%s version %s\n", pkg.Name, pkg.Version)

	return err
}
