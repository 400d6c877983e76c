package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/opsgrid/check-cm/internal/config"
)

type fakeLister struct {
	names   []string
	err     error
	cluster string
	service string
}

func (f *fakeLister) Clusters(ctx context.Context) ([]string, error) {
	return f.names, f.err
}

func (f *fakeLister) Services(ctx context.Context, cluster string) ([]string, error) {
	f.cluster = cluster
	return f.names, f.err
}

func (f *fakeLister) Roles(ctx context.Context, cluster, service string) ([]string, error) {
	f.cluster = cluster
	f.service = service
	return f.names, f.err
}

func TestRunListClusters(t *testing.T) {
	api := &fakeLister{names: []string{"prod", "staging"}}
	settings := &config.Settings{ListClusters: true}

	var buf bytes.Buffer
	if err := runList(context.Background(), api, settings, &buf); err != nil {
		t.Fatalf("runList() error: %v", err)
	}

	want := "prod\nstaging\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRunListRolesPassesTarget(t *testing.T) {
	api := &fakeLister{names: []string{"hdfs-NAMENODE-1"}}
	settings := &config.Settings{
		ListRoles: true,
		Target:    config.Target{Cluster: "prod", Service: "hdfs"},
	}

	var buf bytes.Buffer
	if err := runList(context.Background(), api, settings, &buf); err != nil {
		t.Fatalf("runList() error: %v", err)
	}

	if api.cluster != "prod" || api.service != "hdfs" {
		t.Errorf("listed roles for %s/%s, want prod/hdfs", api.cluster, api.service)
	}
	if buf.String() != "hdfs-NAMENODE-1\n" {
		t.Errorf("output = %q, want %q", buf.String(), "hdfs-NAMENODE-1\n")
	}
}

func TestRunListError(t *testing.T) {
	api := &fakeLister{err: errors.New("boom")}
	settings := &config.Settings{ListServices: true, Target: config.Target{Cluster: "prod"}}

	var buf bytes.Buffer
	err := runList(context.Background(), api, settings, &buf)
	if err == nil {
		t.Fatal("runList() expected an error")
	}
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty on error", buf.String())
	}
}
