package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/okian/classmates/internal/domain/geo"
	"github.com/okian/classmates/internal/domain/model"
	"github.com/okian/classmates/internal/seed"
)

// Error constants.
var (
	ErrInvalidID      = errors.New("id must be an integer")
	ErrEmptyPatch     = errors.New("nothing to update: set at least one of --name, --city, --country, --lat/--lng")
	ErrHalfLocation   = errors.New("--lat and --lng must be given together")
	ErrMissingBatchIn = errors.New("--file is required (use - for stdin)")
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every classmate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, _, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			people, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			return o.print(people)
		},
	}
}

func newGetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one classmate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, _, _, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return o.print(p)
		},
	}
}

// personFlags binds the editable fields of a classmate to a flag set.
type personFlags struct {
	name, city, country string
	lat, lng            float64
}

func (pf *personFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&pf.name, "name", "", "name")
	fs.StringVar(&pf.city, "city", "", "city")
	fs.StringVar(&pf.country, "country", "", "country")
	fs.Float64Var(&pf.lat, "lat", 0, "latitude")
	fs.Float64Var(&pf.lng, "lng", 0, "longitude")
}

// location returns the location only when both coordinates were given.
func (pf *personFlags) location(fs *pflag.FlagSet) (*model.Location, error) {
	lat, lng := fs.Changed("lat"), fs.Changed("lng")
	switch {
	case lat && lng:
		return &model.Location{Lat: pf.lat, Lng: pf.lng}, nil
	case lat || lng:
		return nil, ErrHalfLocation
	default:
		return nil, nil
	}
}

// patch holds only the flags the user actually set.
func (pf *personFlags) patch(fs *pflag.FlagSet) (model.PersonPatch, error) {
	var p model.PersonPatch
	if fs.Changed("name") {
		p.Name = model.Ptr(pf.name)
	}
	if fs.Changed("city") {
		p.City = model.Ptr(pf.city)
	}
	if fs.Changed("country") {
		p.Country = model.Ptr(pf.country)
	}
	loc, err := pf.location(fs)
	if err != nil {
		return model.PersonPatch{}, err
	}
	p.Location = loc
	return p, nil
}

func newCreateCmd(o *options) *cobra.Command {
	var pf personFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a classmate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := pf.location(cmd.Flags())
			if err != nil {
				return err
			}
			c, _, _, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.Create(cmd.Context(), model.Person{
				Name:     pf.name,
				City:     pf.city,
				Country:  pf.country,
				Location: loc,
			})
			if err != nil {
				return err
			}
			return o.print(p)
		},
	}
	pf.bind(cmd.Flags())
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUpdateCmd(o *options) *cobra.Command {
	var pf personFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a classmate; only the flags given are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patch, err := pf.patch(cmd.Flags())
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return ErrEmptyPatch
			}
			c, _, _, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return o.print(p)
		},
	}
	pf.bind(cmd.Flags())
	return cmd
}

func newDeleteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a classmate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, _, _, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			res, err := c.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(res.Raw) > 0 {
				return o.print(res.Raw)
			}
			return o.print(res)
		},
	}
}

func newStatsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show counts by city and country",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, _, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			s, err := c.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			return o.print(s)
		},
	}
}

func newBatchCmd(o *options) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Apply a JSON array of {id, data} items in one request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := o.readBatch(path)
			if err != nil {
				return err
			}
			c, _, _, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			res, err := c.BatchUpdate(cmd.Context(), items)
			if err != nil {
				return err
			}
			if len(res.Raw) > 0 {
				return o.print(res.Raw)
			}
			return o.print(res)
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "JSON file with batch items, - for stdin")
	return cmd
}

func (o *options) readBatch(path string) ([]model.BatchItem, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return nil, ErrMissingBatchIn
	case "-":
		data, err = readAll(o.in)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read batch items: %w", err)
	}

	var items []model.BatchItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse batch items: %w", err)
	}
	return items, nil
}

func newNearbyCmd(o *options) *cobra.Command {
	var (
		lat, lng, radius float64
		count            int
	)
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Find the classmates closest to a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, _, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			people, err := c.List(cmd.Context())
			if err != nil {
				return err
			}

			idx := geo.NewIndex(people)
			var matches []geo.Match
			if radius > 0 {
				matches, err = idx.WithinRadius(lat, lng, radius)
			} else {
				matches, err = idx.Nearest(lat, lng, count)
			}
			if err != nil {
				return err
			}
			return o.print(matches)
		},
	}
	fs := cmd.Flags()
	fs.Float64Var(&lat, "lat", 0, "latitude of the query point")
	fs.Float64Var(&lng, "lng", 0, "longitude of the query point")
	fs.IntVarP(&count, "count", "n", 5, "number of classmates to return")
	fs.Float64VarP(&radius, "radius", "r", 0, "return everyone within this many km instead of the nearest --count")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func newSeedCmd(o *options) *cobra.Command {
	var (
		count, workers int
		rndSeed        uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create random classmates and verify the roster total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cfg, log, err := o.setup(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.SeedWorkers
			}
			stats, err := seed.Run(cmd.Context(), c, seed.Config{Count: count, Workers: workers, Seed: rndSeed}, log)
			if perr := o.print(stats); perr != nil {
				return perr
			}
			return err
		},
	}
	fs := cmd.Flags()
	fs.IntVarP(&count, "count", "n", 20, "number of classmates to create")
	fs.IntVarP(&workers, "workers", "w", 0, "concurrent create calls (default from config)")
	fs.Uint64Var(&rndSeed, "seed", 0, "generator seed for a reproducible roster (0 = random)")
	return cmd
}
