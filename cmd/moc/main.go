// Command moc is a CLI front-end over the moc package: build coverage
// maps from cones/boxes/polygons/positions/timestamps, combine them with
// set operations, inspect and convert between the ASCII/JSON/binary-stream
// encodings. Subcommand dispatch follows the same flag.NewFlagSet-per-verb
// shape as the teacher's root main.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/moclib/go-moc/internal/healpixgeo"
	"github.com/moclib/go-moc/moc"
)

var logger = log.New(os.Stderr, "moc: ", 0)

const helptext = `moc is a tool for building, combining and inspecting coverage maps.

Usage:

	moc <command> [arguments]

Commands:

	info       print quantity, depth and range/cell counts for a MOC file
	table      print per-depth cell counts for a MOC file
	convert    convert a MOC file between ascii, json and stream encodings
	from       build a MOC from a geometric or temporal region
	op         combine two MOC files with a set operation
	filter     degrade a MOC file to a coarser depth
	hprint     print a MOC file as a depth/idx cell list
	view       print a MOC file as raw [lo, hi) ranges

Use "moc <command> -h" for per-command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, helptext)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = runInfo(os.Args[2:])
	case "table":
		err = runTable(os.Args[2:])
	case "convert":
		err = runConvert(os.Args[2:])
	case "from":
		err = runFrom(os.Args[2:])
	case "op":
		err = runOp(os.Args[2:])
	case "filter":
		err = runFilter(os.Args[2:])
	case "hprint":
		err = runHPrint(os.Args[2:])
	case "view":
		err = runView(os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, helptext)
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal(err)
	}
}

func parseQuantity(s string) (moc.Quantity, error) {
	switch strings.ToLower(s) {
	case "space", "hpx":
		return moc.Hpx, nil
	case "time":
		return moc.Time, nil
	case "frequency", "freq":
		return moc.Frequency, nil
	default:
		return 0, fmt.Errorf("unknown quantity %q (want space|time|frequency)", s)
	}
}

func readMOC(path, format string, q moc.Quantity, depthMax uint8) (moc.RangeMOC[uint64], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return moc.RangeMOC[uint64]{}, err
	}
	switch format {
	case "ascii":
		return moc.FromASCII[uint64](q, depthMax, string(data))
	case "json":
		return moc.FromJSON[uint64](q, depthMax, data)
	case "stream":
		f, err := os.Open(path)
		if err != nil {
			return moc.RangeMOC[uint64]{}, err
		}
		defer f.Close()
		return moc.ReadStream[uint64](f, q, depthMax)
	default:
		return moc.RangeMOC[uint64]{}, fmt.Errorf("unknown format %q (want ascii|json|stream)", format)
	}
}

func writeMOC(path, format string, m moc.RangeMOC[uint64]) error {
	switch format {
	case "ascii":
		return os.WriteFile(path, []byte(moc.ToASCII(m)), 0o644)
	case "json":
		data, err := moc.ToJSON(m)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	case "stream":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return moc.WriteStream(f, m)
	default:
		return fmt.Errorf("unknown format %q (want ascii|json|stream)", format)
	}
}

func writeOut(path, format string, m moc.RangeMOC[uint64]) error {
	if path == "" || path == "-" {
		switch format {
		case "ascii":
			_, err := fmt.Fprintln(os.Stdout, moc.ToASCII(m))
			return err
		case "json":
			data, err := moc.ToJSON(m)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		default:
			return fmt.Errorf("format %q requires -out", format)
		}
	}
	return writeMOC(path, format, m)
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	format := fs.String("format", "ascii", "input format: ascii|json|stream")
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max used to decode the file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc info [-format f] [-q quantity] [-depth d] <file>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	m, err := readMOC(fs.Arg(0), *format, q, uint8(*depth))
	if err != nil {
		return err
	}
	cells := m.Cells()
	fmt.Printf("quantity:   %s\n", m.Q)
	fmt.Printf("depth_max:  %d\n", m.DepthMax)
	fmt.Printf("n_ranges:   %d\n", m.Ranges.Len())
	fmt.Printf("n_cells:    %d\n", len(cells))
	return nil
}

func runTable(args []string) error {
	fs := flag.NewFlagSet("table", flag.ExitOnError)
	format := fs.String("format", "ascii", "input format: ascii|json|stream")
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max used to decode the file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc table [-format f] [-q quantity] [-depth d] <file>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	m, err := readMOC(fs.Arg(0), *format, q, uint8(*depth))
	if err != nil {
		return err
	}
	counts := make(map[uint8]int)
	for _, c := range m.Cells() {
		counts[c.Depth]++
	}
	fmt.Printf("depth\tcells\n")
	for d := 0; d <= int(m.DepthMax); d++ {
		if n, ok := counts[uint8(d)]; ok {
			fmt.Printf("%d\t%d\n", d, n)
		}
	}
	return nil
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	inFormat := fs.String("informat", "ascii", "input format: ascii|json|stream")
	outFormat := fs.String("outformat", "json", "output format: ascii|json|stream")
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max used to decode the file")
	out := fs.String("out", "", "output path (\"-\" or empty prints to stdout, ascii/json only)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc convert [-informat f] [-outformat f] [-q quantity] [-depth d] -out <path> <file>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	m, err := readMOC(fs.Arg(0), *inFormat, q, uint8(*depth))
	if err != nil {
		return err
	}
	return writeOut(*out, *outFormat, m)
}

func runOp(args []string) error {
	fs := flag.NewFlagSet("op", flag.ExitOnError)
	format := fs.String("format", "ascii", "format of both inputs and the output: ascii|json|stream")
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max used to decode the inputs")
	out := fs.String("out", "", "output path (\"-\" or empty prints to stdout)")
	fs.Parse(args)
	if fs.NArg() < 3 {
		return fmt.Errorf("usage: moc op [-format f] [-q quantity] [-depth d] <and|or|minus|xor> <a> <b>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	a, err := readMOC(fs.Arg(1), *format, q, uint8(*depth))
	if err != nil {
		return err
	}
	b, err := readMOC(fs.Arg(2), *format, q, uint8(*depth))
	if err != nil {
		return err
	}
	var result moc.RangeMOC[uint64]
	switch fs.Arg(0) {
	case "and":
		result, err = a.And(b)
	case "or":
		result, err = a.Or(b)
	case "minus":
		result, err = a.Minus(b)
	case "xor":
		result, err = a.Xor(b)
	default:
		return fmt.Errorf("unknown op %q (want and|or|minus|xor)", fs.Arg(0))
	}
	if err != nil {
		return err
	}
	return writeOut(*out, *format, result)
}

func runFilter(args []string) error {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	format := fs.String("format", "ascii", "format of the input and output")
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max used to decode the input")
	newDepth := fs.Uint("newdepth", 0, "depth_max to degrade to")
	out := fs.String("out", "", "output path (\"-\" or empty prints to stdout)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc filter [-format f] [-q quantity] [-depth d] -newdepth d <file>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	m, err := readMOC(fs.Arg(0), *format, q, uint8(*depth))
	if err != nil {
		return err
	}
	degraded, err := m.Degrade(uint8(*newDepth))
	if err != nil {
		return err
	}
	return writeOut(*out, *format, degraded)
}

func runHPrint(args []string) error {
	fs := flag.NewFlagSet("hprint", flag.ExitOnError)
	format := fs.String("format", "ascii", "input format: ascii|json|stream")
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max used to decode the file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc hprint [-format f] [-q quantity] [-depth d] <file>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	m, err := readMOC(fs.Arg(0), *format, q, uint8(*depth))
	if err != nil {
		return err
	}
	for _, c := range m.Cells() {
		fmt.Printf("%d/%d\n", c.Depth, c.Idx)
	}
	return nil
}

func runView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	format := fs.String("format", "ascii", "input format: ascii|json|stream")
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max used to decode the file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc view [-format f] [-q quantity] [-depth d] <file>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	m, err := readMOC(fs.Arg(0), *format, q, uint8(*depth))
	if err != nil {
		return err
	}
	for i := 0; i < m.Ranges.Len(); i++ {
		lo, hi := m.Ranges.At(i)
		fmt.Printf("[%d, %d)\n", lo, hi)
	}
	return nil
}

func runFrom(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: moc from <cone|ellipse|box|zone|polygon|pos|timestamp|timerange> [arguments]")
	}
	kind, rest := args[0], args[1:]
	fs := flag.NewFlagSet("from "+kind, flag.ExitOnError)
	depth := fs.Uint("depth", 10, "depth_max of the built MOC")
	out := fs.String("out", "", "output path (\"-\" or empty prints to stdout)")
	format := fs.String("format", "ascii", "output format: ascii|json|stream")
	lon := fs.Float64("lon", 0, "longitude in degrees")
	lat := fs.Float64("lat", 0, "latitude in degrees")
	radius := fs.Float64("radius", 0, "radius in degrees (cone), or semi-major axis in degrees (ellipse)")
	minorAxis := fs.Float64("minor", 0, "semi-minor axis in degrees (ellipse)")
	posAngle := fs.Float64("pa", 0, "position angle in degrees, east of north (ellipse)")
	minLon := fs.Float64("minlon", 0, "box/zone min longitude in degrees")
	minLat := fs.Float64("minlat", 0, "box/zone min latitude in degrees")
	maxLon := fs.Float64("maxlon", 0, "box/zone max longitude in degrees")
	maxLat := fs.Float64("maxlat", 0, "box/zone max latitude in degrees")
	verts := fs.String("verts", "", "polygon vertices, \"lon,lat;lon,lat;...\" in degrees")
	positions := fs.String("positions", "", "point positions, \"lon,lat;lon,lat;...\" in degrees")
	from := fs.String("from", "", "timerange/timestamp start, ISO-8601")
	to := fs.String("to", "", "timerange end, ISO-8601")
	fs.Parse(rest)

	geo := healpixgeo.Adapter{}
	var m moc.RangeMOC[uint64]
	var err error

	switch kind {
	case "cone":
		m, err = moc.FromCone[uint64](geo, uint8(*depth), *lon*degToRad, *lat*degToRad, *radius*degToRad)
	case "ellipse":
		m, err = moc.FromEllipse[uint64](geo, uint8(*depth), *lon*degToRad, *lat*degToRad, *radius*degToRad, *minorAxis*degToRad, *posAngle*degToRad)
	case "box":
		m, err = moc.FromBox[uint64](geo, uint8(*depth), *minLon, *minLat, *maxLon, *maxLat)
	case "zone":
		m, err = moc.FromZone[uint64](geo, uint8(*depth), *minLon, *minLat, *maxLon, *maxLat)
	case "polygon":
		pts, perr := parsePairs(*verts)
		if perr != nil {
			return perr
		}
		m, err = moc.FromPolygon[uint64](geo, uint8(*depth), pts)
	case "pos":
		pts, perr := parsePairs(*positions)
		if perr != nil {
			return perr
		}
		ps := make([]moc.Position, len(pts))
		for i, p := range pts {
			ps[i] = moc.Position{LonRad: p[0] * degToRad, LatRad: p[1] * degToRad}
		}
		m, err = moc.FromPositions[uint64](geo, uint8(*depth), ps)
	case "timestamp":
		micros, terr := moc.ParseTime(*from)
		if terr != nil {
			return terr
		}
		m = moc.FromCells[uint64](moc.Time, uint8(*depth), []moc.Cell{{Depth: uint8(*depth), Idx: micros >> moc.Time.Shift(uint8(*depth), 64)}}, 1)
	case "timerange":
		fromMicros, terr := moc.ParseTime(*from)
		if terr != nil {
			return terr
		}
		toMicros, terr := moc.ParseTime(*to)
		if terr != nil {
			return terr
		}
		m = moc.RangeMOC[uint64]{Q: moc.Time, DepthMax: uint8(*depth), Ranges: moc.NewRanges([]moc.Range[uint64]{{fromMicros, toMicros}})}
	default:
		return fmt.Errorf("unknown from-kind %q", kind)
	}
	if err != nil {
		return err
	}
	return writeOut(*out, *format, m)
}

const degToRad = 3.141592653589793 / 180

func parsePairs(s string) ([][2]float64, error) {
	if s == "" {
		return nil, fmt.Errorf("no points given")
	}
	var out [][2]float64
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("bad point %q, want \"lon,lat\"", pair)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, [2]float64{lon, lat})
	}
	return out, nil
}
