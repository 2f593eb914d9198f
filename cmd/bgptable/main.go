// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of bgptable

// Command bgptable builds a route table from a YAML fixture, dumps it
// and answers longest-prefix match queries against it. An inspection
// aid for working on table behavior, not a routing daemon.
package main

import (
	"fmt"
	"log/slog"
	"net/netip"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/routemesh/bgptable"
	"github.com/routemesh/bgptable/prefix"
)

type routeFixture struct {
	Routes []fixtureRoute `yaml:"routes"`
}

type fixtureRoute struct {
	Prefix  string `yaml:"prefix"`
	NextHop string `yaml:"nexthop"`
}

var (
	fixtureFile string
	matchAddrs  []string
	verbose     bool
)

func addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&fixtureFile, "file", "f", "", "YAML route fixture to load (required)")
	fs.StringSliceVarP(&matchAddrs, "match", "m", nil, "addresses to longest-prefix match against the table")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "bgptable",
		Short:        "Build a prefix table from a YAML fixture and inspect it",
		SilenceUsage: true,
		RunE:         run,
	}
	addFlags(cmd.Flags())
	cmd.MarkFlagRequired("file")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	data, err := os.ReadFile(fixtureFile)
	if err != nil {
		return err
	}
	var fx routeFixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("parsing %s: %w", fixtureFile, err)
	}

	tables := map[prefix.Family]*bgptable.Table{
		prefix.IPv4: bgptable.New(bgptable.AFIIPv4, bgptable.SAFIUnicast),
		prefix.IPv6: bgptable.New(bgptable.AFIIPv6, bgptable.SAFIUnicast),
	}

	// The fixture routes stay held (and carry their next hop as
	// payload) until we are done querying.
	var held []*bgptable.Node
	for _, rt := range fx.Routes {
		p, err := prefix.Parse(rt.Prefix)
		if err != nil {
			return fmt.Errorf("route %q: %w", rt.Prefix, err)
		}
		n := tables[p.Family()].Get(p)
		if n.Info != nil {
			logger.Debug("duplicate route in fixture", "prefix", rt.Prefix)
			n.Release()
			continue
		}
		n.Info = rt.NextHop
		held = append(held, n)
		logger.Debug("loaded route", "prefix", rt.Prefix, "nexthop", rt.NextHop)
	}

	for fam, t := range tables {
		if t.Len() == 0 {
			continue
		}
		fmt.Printf("%s (%d nodes):\n", fam, t.Len())
		if err := t.Dump(os.Stdout); err != nil {
			return err
		}
	}

	for _, s := range matchAddrs {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return fmt.Errorf("match address %q: %w", s, err)
		}
		fam := prefix.IPv4
		if addr.Is6() {
			fam = prefix.IPv6
		}
		n := tables[fam].MatchAddr(addr)
		if n == nil {
			fmt.Printf("%s: no match\n", addr)
			continue
		}
		fmt.Printf("%s: %s via %v\n", addr, n.Prefix(), n.Info)
		n.Release()
	}

	for _, n := range held {
		n.Info = nil
		n.Release()
	}
	for _, t := range tables {
		t.Release()
	}
	bgptable.ReleaseAll()
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
