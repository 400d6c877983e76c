package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/opsgrid/check-cm/internal/cm"
	"github.com/opsgrid/check-cm/internal/config"
)

// lister enumerates object names from the management API.
type lister interface {
	Clusters(ctx context.Context) ([]string, error)
	Services(ctx context.Context, cluster string) ([]string, error)
	Roles(ctx context.Context, cluster, service string) ([]string, error)
}

var _ lister = (*cm.Client)(nil)

// runList prints one name per line for the selected listing.
func runList(ctx context.Context, api lister, settings *config.Settings, w io.Writer) error {
	var (
		names []string
		err   error
	)
	switch {
	case settings.ListClusters:
		names, err = api.Clusters(ctx)
	case settings.ListServices:
		names, err = api.Services(ctx, settings.Target.Cluster)
	case settings.ListRoles:
		names, err = api.Roles(ctx, settings.Target.Cluster, settings.Target.Service)
	}
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}
