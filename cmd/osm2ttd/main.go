// Command osm2ttd builds a 256x256 game from an OpenStreetMap extract. Towns
// come from place nodes, roads from highways, houses from buildings and
// trees from natural=tree nodes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"ttdmap/command"
	"ttdmap/game"
	"ttdmap/savegame"
	"ttdmap/settings"
	"ttdmap/tile"
	"ttdmap/ttd"
)

const mapLog = 8

var (
	size        = flag.Float64("size", 0.1, "Size of the map in degrees")
	townTags    = flag.String("towns", "village,city", "OpenStreetMaps tags to count as towns")
	roadTags    = flag.String("roads", "roads,motorway,trunk,primary,secondary,tertiary,unclassified,residential", "OpenStreetMaps tags to count as roads")
	ttdOut      = flag.String("ttd", "", "Also write an original TTD savegame to this file")
	compression = flag.String("compression", "zstd", "Savegame compression: none, zlib, zstd or lz4")
	settingsArg = flag.String("settings", "", "YAML file with game settings, defaults to $TTDMAP_SETTINGS")
	verbose     = flag.Bool("v", false, "Log every town and failed road piece")
)

// box maps coordinates inside a square of the given size onto map tiles. The
// north corner of the map is the north-east corner of the box.
type box struct {
	minLat, maxLat float64
	minLon, maxLon float64
	size           float64
}

func newBox(lat, lon, size float64) box {
	return box{lat - size/2, lat + size/2, lon - size/2, lon + size/2, size}
}

func (b box) contains(n *osm.Node) bool {
	return b.minLat < n.Lat && n.Lat < b.maxLat && b.minLon < n.Lon && n.Lon < b.maxLon
}

func (b box) xy(n *osm.Node) (x, y uint) {
	x = uint(tile.Clamp(int(255-(n.Lon-b.minLon)/b.size*256), 1, 254))
	y = uint(tile.Clamp(int(255-(n.Lat-b.minLat)/b.size*256), 1, 254))
	return x, y
}

type point struct{ x, y uint }

type extract struct {
	towns     []townSite
	buildings []point
	trees     []point
	roads     [][]point
}

type townSite struct {
	point
	name string
}

func hasTag(tags osm.Tags, key string, values []string) bool {
	v := tags.Find(key)
	return v != "" && (values == nil || slices.Contains(values, v))
}

func scan(ctx context.Context, path string, b box) (*extract, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	scanner := osmpbf.New(ctx, in, 3)
	scanner.SkipRelations = true
	defer scanner.Close()

	towns := strings.Split(*townTags, ",")
	roads := strings.Split(*roadTags, ",")
	nodes := make(map[osm.NodeID]*osm.Node)
	e := &extract{}
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			nodes[o.ID] = o
			if !b.contains(o) {
				continue
			}
			x, y := b.xy(o)
			if hasTag(o.Tags, "place", towns) && o.Tags.Find("name") != "" {
				e.towns = append(e.towns, townSite{point{x, y}, o.Tags.Find("name")})
			}
			if hasTag(o.Tags, "building", []string{"isolated_dwelling"}) {
				e.buildings = append(e.buildings, point{x, y})
			}
			if hasTag(o.Tags, "natural", []string{"tree"}) {
				e.trees = append(e.trees, point{x, y})
			}
		case *osm.Way:
			if !o.Visible {
				continue
			}
			if hasTag(o.Tags, "building", nil) {
				for _, wn := range o.Nodes {
					if n := nodes[wn.ID]; n != nil && b.contains(n) {
						x, y := b.xy(n)
						e.buildings = append(e.buildings, point{x, y})
						break
					}
				}
			}
			if hasTag(o.Tags, "highway", roads) {
				var path []point
				for _, wn := range o.Nodes {
					n := nodes[wn.ID]
					if n == nil || !b.contains(n) {
						if len(path) > 1 {
							e.roads = append(e.roads, path)
						}
						path = nil
						continue
					}
					x, y := b.xy(n)
					path = append(path, point{x, y})
				}
				if len(path) > 1 {
					e.roads = append(e.roads, path)
				}
			}
		}
	}
	return e, scanner.Err()
}

type builder struct {
	w      *game.World
	log    *slog.Logger
	failed int
}

// roadPiece connects t to its neighbour in direction d from both sides.
func (b *builder) roadPiece(t tile.Index, d tile.DiagDirection) (tile.Index, bool) {
	next, ok := b.w.Map.AddDiagDir(t, d)
	if !ok {
		return t, false
	}
	b.build(t, tile.DiagDirToRoadBits(d))
	b.build(next, tile.DiagDirToRoadBits(d.Reverse()))
	return next, true
}

func (b *builder) build(t tile.Index, bits tile.RoadBits) {
	p1 := uint32(bits) | uint32(tile.RoadTypeRoad)<<4
	res := command.DoCommand(b.w, t, p1, 0, command.Exec, command.CmdBuildRoad, "")
	if res.Failed() && !errors.Is(res.Err, command.ErrAlreadyBuilt) {
		b.failed++
		b.log.Debug("road piece failed", "tile", t, "err", res.Err)
	}
}

// road walks a 4-connected line from a to c, always stepping along the axis
// with the larger remaining distance.
func (b *builder) road(a, c point) {
	m := b.w.Map
	t := m.XY(a.x, a.y)
	goal := m.XY(c.x, c.y)
	for t != goal {
		x, y := int(m.X(t)), int(m.Y(t))
		dx, dy := int(c.x)-x, int(c.y)-y
		var d tile.DiagDirection
		switch {
		case abs(dx) >= abs(dy) && dx > 0:
			d = tile.DiagDirSW
		case abs(dx) >= abs(dy):
			d = tile.DiagDirNE
		case dy > 0:
			d = tile.DiagDirSE
		default:
			d = tile.DiagDirNW
		}
		next, ok := b.roadPiece(t, d)
		if !ok {
			return
		}
		t = next
	}
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

func (b *builder) house(p point, typ uint16) bool {
	m := b.w.Map
	t := m.XY(p.x, p.y)
	if _, ok := m.Clear(t); !ok {
		return false
	}
	id, town := b.w.CalcClosestTownFromTile(t, ^uint(0))
	if town == nil {
		return false
	}
	m.MakeHouse(t, id, typ, 3, uint8(b.w.Random.Next()))
	town.NumHouses++
	town.Population += 30
	return true
}

func (b *builder) tree(p point) bool {
	t := b.w.Map.XY(p.x, p.y)
	res := command.DoCommand(b.w, t, uint32(t), uint32(tile.InvalidTreeType), command.Exec, command.CmdPlantTree, "")
	return res.Succeeded()
}

func build(e *extract, s settings.GameSettings, log *slog.Logger) (*game.World, error) {
	w, err := game.New(s, mapLog, mapLog)
	if err != nil {
		return nil, err
	}
	for _, ts := range e.towns {
		if _, err := w.NewTown(w.Map.XY(ts.x, ts.y), ts.name); err != nil {
			return nil, fmt.Errorf("town %s: %w", ts.name, err)
		}
		log.Debug("added town", "name", ts.name, "x", ts.x, "y", ts.y)
	}

	b := &builder{w: w, log: log}
	w.CurrentCompany = tile.OwnerTown
	for _, path := range e.roads {
		for i := 1; i < len(path); i++ {
			b.road(path[i-1], path[i])
		}
	}

	houses := 0
	for _, p := range e.buildings {
		if b.house(p, 0x06) {
			houses++
		}
	}

	w.CurrentCompany = tile.OwnerNone
	trees := 0
	for _, p := range e.trees {
		if b.tree(p) {
			trees++
		}
	}
	log.Info("built map", "towns", w.Towns.Len(), "roads", len(e.roads), "failed_pieces", b.failed, "houses", houses, "trees", trees)
	return w, nil
}

// title fits the input file name into a TTD savegame title.
func title(path string) string {
	t := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(t) > 40 {
		t = t[:40]
	}
	return t
}

func run(ctx context.Context) error {
	flag.Parse()
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	if flag.NArg() != 4 {
		return errors.New("usage: osm2ttd [-size=0.1] [-ttd=FILE] INFILE OUTFILE LATITUDE LONGITUDE")
	}
	inFile, outFile := flag.Arg(0), flag.Arg(1)
	lat, err := strconv.ParseFloat(flag.Arg(2), 64)
	if err != nil {
		return err
	}
	lon, err := strconv.ParseFloat(flag.Arg(3), 64)
	if err != nil {
		return err
	}
	comp, err := savegame.ParseCompression(*compression)
	if err != nil {
		return err
	}
	s := settings.Default()
	if *settingsArg == "" {
		*settingsArg = os.Getenv("TTDMAP_SETTINGS")
	}
	if *settingsArg != "" {
		if s, err = settings.LoadFile(*settingsArg); err != nil {
			return err
		}
	}

	log := slog.Default().With("input", inFile)
	e, err := scan(ctx, inFile, newBox(lat, lon, *size))
	if err != nil {
		return err
	}
	w, err := build(e, s, log)
	if err != nil {
		return err
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := savegame.Write(f, savegame.Encode(w), comp); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if *ttdOut == "" {
		return nil
	}
	old, err := ttd.FromWorld(w, title(inFile))
	if err != nil {
		return err
	}
	tf, err := os.Create(*ttdOut)
	if err != nil {
		return err
	}
	defer tf.Close()
	return old.Save(tf)
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("osm2ttd failed", "err", err)
		os.Exit(1)
	}
}
