// Command moc-set is a CLI front-end over the mocset package: create,
// append to, and query a MocSet registry file. Subcommand dispatch
// follows the same flag.NewFlagSet-per-verb shape as the teacher's root
// main.go.
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
	"github.com/moclib/go-moc/mocset"
)

var logger = log.New(os.Stderr, "moc-set: ", 0)

const helptext = `moc-set manages a MocSet registry file: a single file holding many
MOCs behind a fixed-size header of packed meta entries.

Usage:

	moc-set <command> [arguments]

Commands:

	make        create a new, empty MocSet file sized for n128
	append      add one MOC entry to an existing MocSet file
	chgstatus   change the status of one or more stored ids
	purge       compact a MocSet file, dropping removed entries
	list        list every non-void slot in a MocSet file
	extract     print one stored MOC as ascii
	union       fold matching slots together into one MOC
	query       find every slot intersecting a region

Use "moc-set <command> -h" for per-command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, helptext)
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "make":
		err = runMake(os.Args[2:])
	case "append":
		err = runAppend(os.Args[2:])
	case "chgstatus":
		err = runChgStatus(os.Args[2:])
	case "purge":
		err = runPurge(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "union":
		err = runUnion(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
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

func runMake(args []string) error {
	fs := flag.NewFlagSet("make", flag.ExitOnError)
	n128 := fs.Uint64("n128", 1, "header size unit; capacity = n128*128 - 1 slots")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc-set make [-n128 n] <path>")
	}
	return mocset.Make(fs.Arg(0), *n128, nil)
}

func runAppend(args []string) error {
	fs := flag.NewFlagSet("append", flag.ExitOnError)
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max of the entry being stored")
	id := fs.Int64("id", 0, "signed identifier (negative marks the entry deprecated)")
	format := fs.String("format", "ascii", "input MOC format: ascii|json")
	fs.Parse(args)
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: moc-set append [-q quantity] [-depth d] -id n <path> <moc-file>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		return err
	}

	var raw []byte
	if mocset.RangeWidth(uint8(*depth)) == 4 {
		var m moc.RangeMOC[uint32]
		m, err = decodeForAppend32(*format, q, uint8(*depth), data)
		if err == nil {
			raw = moc.Encode(m.Ranges)
		}
	} else {
		var m moc.RangeMOC[uint64]
		m, err = decodeForAppend64(*format, q, uint8(*depth), data)
		if err == nil {
			raw = moc.Encode(m.Ranges)
		}
	}
	if err != nil {
		return err
	}
	return mocset.Append(fs.Arg(0), mocset.Entry{SignedID: *id, Depth: uint8(*depth), Data: raw})
}

func decodeForAppend32(format string, q moc.Quantity, depth uint8, data []byte) (moc.RangeMOC[uint32], error) {
	switch format {
	case "ascii":
		return moc.FromASCII[uint32](q, depth, string(data))
	case "json":
		return moc.FromJSON[uint32](q, depth, data)
	default:
		return moc.RangeMOC[uint32]{}, fmt.Errorf("unknown format %q (want ascii|json)", format)
	}
}

func decodeForAppend64(format string, q moc.Quantity, depth uint8, data []byte) (moc.RangeMOC[uint64], error) {
	switch format {
	case "ascii":
		return moc.FromASCII[uint64](q, depth, string(data))
	case "json":
		return moc.FromJSON[uint64](q, depth, data)
	default:
		return moc.RangeMOC[uint64]{}, fmt.Errorf("unknown format %q (want ascii|json)", format)
	}
}

func parseStatus(s string) (mocset.Status, error) {
	switch strings.ToLower(s) {
	case "valid":
		return mocset.StatusValid, nil
	case "deprecated":
		return mocset.StatusDeprecated, nil
	case "removed":
		return mocset.StatusRemoved, nil
	default:
		return 0, fmt.Errorf("unknown status %q (want valid|deprecated|removed)", s)
	}
}

func parseIDList(s string) ([]uint64, error) {
	var ids []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runChgStatus(args []string) error {
	fs := flag.NewFlagSet("chgstatus", flag.ExitOnError)
	status := fs.String("status", "", "new status: valid|deprecated|removed")
	ids := fs.String("ids", "", "comma-separated ids to change")
	fs.Parse(args)
	if fs.NArg() < 1 || *status == "" || *ids == "" {
		return fmt.Errorf("usage: moc-set chgstatus -status s -ids id[,id...] <path>")
	}
	st, err := parseStatus(*status)
	if err != nil {
		return err
	}
	idList, err := parseIDList(*ids)
	if err != nil {
		return err
	}
	return mocset.ChangeStatus(fs.Arg(0), st, idList)
}

func runPurge(args []string) error {
	fs := flag.NewFlagSet("purge", flag.ExitOnError)
	n128 := fs.Uint64("n128", 1, "header size unit for the compacted file")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc-set purge [-n128 n] <path>")
	}
	return mocset.Purge(fs.Arg(0), *n128)
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc-set list <path>")
	}
	rows, err := mocset.List(fs.Arg(0))
	if err != nil {
		return err
	}
	mocset.WriteList(os.Stdout, rows)
	return nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	id := fs.Uint64("id", 0, "id to extract")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc-set extract [-q quantity] -id n <path>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	_, depth, err := mocset.ExtractRaw(fs.Arg(0), *id)
	if err != nil {
		return err
	}
	if mocset.RangeWidth(depth) == 4 {
		m, err := mocset.ExtractU32(fs.Arg(0), *id, q)
		if err != nil {
			return err
		}
		fmt.Println(moc.ToASCII(m))
		return nil
	}
	m, err := mocset.ExtractU64(fs.Arg(0), *id, q)
	if err != nil {
		return err
	}
	fmt.Println(moc.ToASCII(m))
	return nil
}

func runUnion(args []string) error {
	fs := flag.NewFlagSet("union", flag.ExitOnError)
	qname := fs.String("q", "space", "quantity: space|time|frequency")
	depth := fs.Uint("depth", 29, "depth_max of the folded union")
	includeDeprecated := fs.Bool("include-deprecated", false, "also fold in deprecated slots")
	ids := fs.String("ids", "", "comma-separated ids to restrict the union to (empty means all)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc-set union [-q quantity] [-depth d] [-ids id[,id...]] <path>")
	}
	q, err := parseQuantity(*qname)
	if err != nil {
		return err
	}
	var idList []uint64
	if *ids != "" {
		idList, err = parseIDList(*ids)
		if err != nil {
			return err
		}
	}
	m, err := mocset.Union(fs.Arg(0), q, uint8(*depth), mocset.UnionFilter{IncludeDeprecated: *includeDeprecated, IDs: idList})
	if err != nil {
		return err
	}
	fmt.Println(moc.ToASCII(m))
	return nil
}

func runQuery(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: moc-set query <pos|cone|moc> [arguments] <path>")
	}
	kind, rest := args[0], args[1:]
	fs := flag.NewFlagSet("query "+kind, flag.ExitOnError)
	depth := fs.Uint("depth", 10, "depth_max of the query region")
	includeDeprecated := fs.Bool("include-deprecated", false, "also match deprecated slots")
	parallelism := fs.Int("parallel", 0, "number of concurrent slot workers (0 or 1 means sequential)")
	lon := fs.Float64("lon", 0, "longitude in degrees (pos, cone)")
	lat := fs.Float64("lat", 0, "latitude in degrees (pos, cone)")
	radius := fs.Float64("radius", 0, "cone radius in degrees")
	mocFile := fs.String("moc", "", "ascii MOC file describing the query region (moc)")
	mocFormat := fs.String("format", "ascii", "format of -moc: ascii|json")
	fs.Parse(rest)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: moc-set query %s [arguments] <path>", kind)
	}

	var region moc.RangeMOC[uint64]
	var err error
	switch kind {
	case "pos":
		idx, perr := healpixgeo.Ang2Pix(uint8(*depth), *lon*degToRad, *lat*degToRad)
		if perr != nil {
			return perr
		}
		region = moc.FromCells[uint64](moc.Hpx, uint8(*depth), []moc.Cell{{Depth: uint8(*depth), Idx: idx}}, 1)
	case "cone":
		region, err = moc.FromCone[uint64](healpixgeo.Adapter{}, uint8(*depth), *lon*degToRad, *lat*degToRad, *radius*degToRad)
	case "moc":
		if *mocFile == "" {
			return fmt.Errorf("-moc is required for query moc")
		}
		data, rerr := os.ReadFile(*mocFile)
		if rerr != nil {
			return rerr
		}
		switch *mocFormat {
		case "ascii":
			region, err = moc.FromASCII[uint64](moc.Hpx, uint8(*depth), string(data))
		case "json":
			region, err = moc.FromJSON[uint64](moc.Hpx, uint8(*depth), data)
		default:
			return fmt.Errorf("unknown format %q (want ascii|json)", *mocFormat)
		}
	default:
		return fmt.Errorf("unknown query-kind %q (want pos|cone|moc)", kind)
	}
	if err != nil {
		return err
	}

	results, err := mocset.Query(fs.Arg(0), region, *includeDeprecated, *parallelism)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%d\t%.6f\n", r.ID, r.Fraction)
	}
	return nil
}

const degToRad = 3.141592653589793 / 180
